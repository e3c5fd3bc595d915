// 包 geocode：地址到坐标的外部协作方实现（Nominatim / 高德）与缓存装饰器
package geocode

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrNotFound   = errors.New("geocode: no result")
	ErrMissingKey = errors.New("geocode: missing key")
	ErrBadStatus  = errors.New("geocode: unexpected status")
)

// 默认客户端超时：调用方 ctx 通常更短，这里只做兜底
func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 5 * time.Second}
}
