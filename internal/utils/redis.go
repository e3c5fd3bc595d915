// 包 utils：Redis / PostgreSQL 连接工具，统一由配置层提供参数
package utils

import (
	"context"
	"time"

	"zone-api/internal/config"
	"zone-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：使用地址与密码打开 Redis 客户端；地址为空返回 nil
// 背景：保留直接传入参数的能力，用于测试（miniredis）与手工注入场景
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db, DialTimeout: 2 * time.Second})
}

// OpenRedisFromConfig：按配置打开 Redis 并探活；未启用或探活失败时返回 nil，由调用方降级为仅进程内缓存
func OpenRedisFromConfig(ctx context.Context, c *config.Config) *redis.Client {
	if !c.RedisEnable {
		logger.L().Info("redis_disabled")
		return nil
	}
	rc := OpenRedis(c.RedisAddr, c.RedisPass, c.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx).Err(); err != nil {
		logger.L().Error("redis_ping_error", "addr", c.RedisAddr, "err", err)
		_ = rc.Close()
		return nil
	}
	logger.L().Info("redis_ping_ok", "addr", c.RedisAddr, "db", c.RedisDB)
	return rc
}
