// 包 iphint：按访客 IP 推测大致位置，用于在用户输入地址前预选配送区域
package iphint

import (
	"errors"
	"fmt"
	"io"

	"zone-api/internal/metrics"
	"zone-api/internal/zone"
)

// Source：单个 IP 定位数据源
type Source interface {
	Name() string
	Lookup(ip string) (zone.PartialAddress, bool)
}

// 文档注释：按顺序查询的数据源链
// 背景：精度高的来源在前（mmdb 带坐标），城市级来源在后（ip2region）；首个命中即返回。
// 约束：nil 来源被跳过；返回的地址交给区域层级链解析，坐标未命中时仍可按城市/省兜底。
type Chain struct {
	list []Source
}

func NewChain(list ...Source) *Chain {
	var out []Source
	for _, s := range list {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Chain{list: out}
}

// Len：可用来源数量
func (c *Chain) Len() int { return len(c.list) }

func (c *Chain) Lookup(ip string) (zone.PartialAddress, string, bool) {
	for _, s := range c.list {
		if a, ok := s.Lookup(ip); ok {
			metrics.VisitorHintTotal.WithLabelValues(s.Name()).Inc()
			return a, s.Name(), true
		}
	}
	metrics.VisitorHintTotal.WithLabelValues("none").Inc()
	return zone.PartialAddress{}, "", false
}

// Close：关闭持有文件句柄的来源（mmdb、ip2region），返回合并后的错误
func (c *Chain) Close() error {
	var errs []error
	for _, s := range c.list {
		if cl, ok := s.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
