package iphint

import (
	"fmt"
	"net"
	"strings"

	"zone-api/internal/logger"
	"zone-api/internal/zone"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// 文档注释：MaxMind City 库来源
// 背景：直接使用 maxminddb 读取并解码到 geoip2.City，获得城市名、一级行政区、邮编与近似坐标。
// 约束：仅接受 City 类库（GeoLite2-City / GeoIP2-City）；名称优先 lang，缺失时回退英文。
type MMDB struct {
	r    *maxminddb.Reader
	lang string
}

func OpenMMDB(path, lang string) (*MMDB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %q: %w", path, err)
	}
	if !strings.Contains(r.Metadata.DatabaseType, "City") {
		_ = r.Close()
		return nil, fmt.Errorf("mmdb %q is %s, need a City database", path, r.Metadata.DatabaseType)
	}
	logger.L().Info("mmdb_ready", "type", r.Metadata.DatabaseType, "build_epoch", r.Metadata.BuildEpoch)
	if lang == "" {
		lang = "en"
	}
	return &MMDB{r: r, lang: lang}, nil
}

func (m *MMDB) Name() string { return "mmdb" }

func (m *MMDB) Close() error { return m.r.Close() }

func (m *MMDB) Lookup(ip string) (zone.PartialAddress, bool) {
	p := net.ParseIP(strings.TrimSpace(ip))
	if p == nil {
		return zone.PartialAddress{}, false
	}
	var rec geoip2.City
	if err := m.r.Lookup(p, &rec); err != nil {
		logger.L().Debug("mmdb_lookup_error", "err", err)
		return zone.PartialAddress{}, false
	}
	return cityToAddress(&rec, m.lang)
}

func cityToAddress(rec *geoip2.City, lang string) (zone.PartialAddress, bool) {
	var a zone.PartialAddress
	a.City = pickName(rec.City.Names, lang)
	if len(rec.Subdivisions) > 0 {
		a.Province = pickName(rec.Subdivisions[len(rec.Subdivisions)-1].Names, lang)
	}
	a.PostalCode = rec.Postal.Code
	// (0,0) 表示库中无坐标
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		a.Coordinates = &zone.Point{Lat: rec.Location.Latitude, Lng: rec.Location.Longitude}
	}
	ok := a.Coordinates != nil || a.City != "" || a.Province != "" || a.PostalCode != ""
	return a, ok
}

func pickName(names map[string]string, lang string) string {
	if v := names[lang]; v != "" {
		return v
	}
	return names["en"]
}
