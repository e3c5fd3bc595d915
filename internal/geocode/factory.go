package geocode

import (
	"net/http"

	"zone-api/internal/config"
	"zone-api/internal/logger"
	"zone-api/internal/zone"

	"github.com/redis/go-redis/v9"
)

// 文档注释：按配置构建地理编码器
// 背景：provider 为 none 或缺少必要参数时返回 nil，解析链跳过地理编码层；其余情况统一包裹缓存。
func FromConfig(c *config.Config, rc *redis.Client) zone.Geocoder {
	client := &http.Client{Timeout: c.GeocodeTimeout + c.GeocodeTimeout/2}
	var inner zone.Geocoder
	switch c.GeocoderProvider {
	case "nominatim":
		inner = NewNominatim(c.GeocoderEndpoint, c.GeocoderUserAgent, c.GeocoderCountry, client)
	case "amap":
		if c.AMapKey == "" {
			logger.L().Warn("geocoder_disabled", "provider", "amap", "reason", "missing_key")
			return nil
		}
		inner = NewAMap(c.GeocoderEndpoint, c.AMapKey, client)
	default:
		logger.L().Info("geocoder_disabled", "provider", c.GeocoderProvider)
		return nil
	}
	logger.L().Info("geocoder_enabled", "provider", c.GeocoderProvider, "redis", rc != nil, "cache_size", c.GeocodeCacheSize)
	return NewCached(inner, NewLRU(c.GeocodeCacheSize, c.GeocodeCacheTTL), rc, c.GeocodeCacheTTL)
}
