package iphint

import (
	"errors"
	"strings"

	"zone-api/internal/zone"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
)

// 文档注释：ip2region 来源（城市级，无坐标）
// 背景：xdb 返回 "国家|区域|省份|城市|ISP"，只取省与城市交给区域层级链按城市子串 / 省精确匹配。
// 约束：v4/v6 库各自可选，至少需要一个；查询时依次尝试。
type IP2Region struct {
	v4 *xdb.Searcher
	v6 *xdb.Searcher
}

func OpenIP2Region(v4Path, v6Path string) (*IP2Region, error) {
	if v4Path == "" && v6Path == "" {
		return nil, errors.New("ip2region: no database path")
	}
	c := &IP2Region{}
	var err error
	if v4Path != "" {
		if c.v4, err = xdb.NewWithFileOnly(xdb.IPv4, v4Path); err != nil {
			return nil, err
		}
	}
	if v6Path != "" {
		if c.v6, err = xdb.NewWithFileOnly(xdb.IPv6, v6Path); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *IP2Region) Name() string { return "ip2region" }

func (c *IP2Region) Close() error {
	if c.v4 != nil {
		c.v4.Close()
	}
	if c.v6 != nil {
		c.v6.Close()
	}
	return nil
}

func (c *IP2Region) Lookup(ip string) (zone.PartialAddress, bool) {
	if ip == "" {
		return zone.PartialAddress{}, false
	}
	for _, s := range []*xdb.Searcher{c.v4, c.v6} {
		if s == nil {
			continue
		}
		region, err := s.SearchByStr(ip)
		if err != nil || region == "" {
			continue
		}
		if a := parseRegion(region); a.City != "" || a.Province != "" {
			return a, true
		}
	}
	return zone.PartialAddress{}, false
}

func parseRegion(s string) zone.PartialAddress {
	parts := strings.Split(s, "|")
	var a zone.PartialAddress
	if len(parts) > 2 {
		a.Province = safe(parts[2])
	}
	if len(parts) > 3 {
		a.City = safe(parts[3])
	}
	return a
}

func safe(s string) string {
	s = strings.TrimSpace(s)
	if s == "0" || strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}
