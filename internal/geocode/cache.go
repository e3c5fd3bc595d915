package geocode

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"zone-api/internal/logger"
	"zone-api/internal/metrics"
	"zone-api/internal/zone"

	"github.com/redis/go-redis/v9"
)

// 文档注释：带两级缓存的地理编码装饰器
// 背景：L1 为进程内 LRU，L2 为可选 Redis（多实例共享）；仅缓存成功结果，失败不写缓存，下一次调用会重新请求上游。
// 约束：缓存键为规范化地址的 FNV64a 摘要，避免把明文地址写入 Redis；Redis 异常只降级，不影响返回。
type Cached struct {
	inner zone.Geocoder
	l1    *LRU
	rc    *redis.Client
	ttl   time.Duration
}

// NewCached：rc 可为 nil
func NewCached(inner zone.Geocoder, l1 *LRU, rc *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cached{inner: inner, l1: l1, rc: rc, ttl: ttl}
}

func (c *Cached) Geocode(ctx context.Context, address string) (zone.Point, error) {
	key := cacheKey(address)
	if c.l1 != nil {
		if p, ok := c.l1.Get(key); ok {
			metrics.GeocodeCacheTotal.WithLabelValues("l1", "hit").Inc()
			return p, nil
		}
		metrics.GeocodeCacheTotal.WithLabelValues("l1", "miss").Inc()
	}
	if c.rc != nil {
		if s, err := c.rc.Get(ctx, key).Result(); err == nil && s != "" {
			var p zone.Point
			if json.Unmarshal([]byte(s), &p) == nil {
				metrics.GeocodeCacheTotal.WithLabelValues("redis", "hit").Inc()
				if c.l1 != nil {
					c.l1.Set(key, p)
				}
				return p, nil
			}
		} else if err != nil && err != redis.Nil {
			logger.L().Debug("geocode_redis_get_error", "err", err)
		}
		metrics.GeocodeCacheTotal.WithLabelValues("redis", "miss").Inc()
	}
	p, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return p, err
	}
	if c.l1 != nil {
		c.l1.Set(key, p)
	}
	if c.rc != nil {
		b, _ := json.Marshal(p)
		if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
			logger.L().Debug("geocode_redis_set_error", "err", err)
		}
	}
	return p, nil
}

// 大小写与空白差异视为同一地址
func cacheKey(address string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	h := fnv.New64a()
	h.Write([]byte(norm))
	return "geocode:" + strconv.FormatUint(h.Sum64(), 16)
}
