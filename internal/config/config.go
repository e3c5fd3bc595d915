// 包 config：集中读取环境变量（可由 .env 预置），避免各模块散落 os.Getenv；数值解析失败回退默认值
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config：进程级配置快照，启动时读取一次
type Config struct {
	Addr       string
	APIBase    string
	AdminToken string
	LogLevel   string
	LogFormat  string

	ZonesSource string // file | postgres
	ZonesFile   string
	ReloadEvery time.Duration
	HistoryKeep int

	GeocoderProvider  string // nominatim | amap | none
	GeocoderEndpoint  string
	GeocoderUserAgent string
	GeocoderCountry   string
	AMapKey           string
	GeocodeTimeout    time.Duration
	GeocodeCacheSize  int
	GeocodeCacheTTL   time.Duration

	RedisEnable bool
	RedisAddr   string
	RedisPass   string
	RedisDB     int

	PostgresDSN string
	PGMaxOpen   int
	PGMaxIdle   int

	GeoIPPath     string
	GeoIPLang     string
	IP2RegionPath string
	IP2RegionV6   string

	RateLimitEnabled bool
	RateLimitQPS     int
}

// LoadDotenv：按约定顺序加载 .env 文件，文件缺失时静默跳过；已存在的环境变量不被覆盖
func LoadDotenv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load：加载 .env 后读取环境变量
func Load() *Config {
	LoadDotenv()
	return FromEnv()
}

// FromEnv：仅读取当前环境变量（测试中配合 t.Setenv 使用）
func FromEnv() *Config {
	c := &Config{
		Addr:       str("ADDR", ":8080"),
		APIBase:    strings.TrimRight(str("API_BASE", "/api"), "/"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		LogLevel:   str("LOG_LEVEL", "info"),
		LogFormat:  str("LOG_FORMAT", "text"),

		ZonesSource: strings.ToLower(str("ZONES_SOURCE", "file")),
		ZonesFile:   str("ZONES_FILE", filepath.Join("data", "zones", "zones.json")),
		ReloadEvery: time.Duration(num("ZONES_RELOAD_S", 300)) * time.Second,
		HistoryKeep: num("ZONES_HISTORY_KEEP", 20),

		GeocoderProvider:  strings.ToLower(str("GEOCODER_PROVIDER", "none")),
		GeocoderEndpoint:  os.Getenv("GEOCODER_ENDPOINT"),
		GeocoderUserAgent: str("GEOCODER_USER_AGENT", "zone-api/1.0"),
		GeocoderCountry:   os.Getenv("GEOCODER_COUNTRY"),
		AMapKey:           os.Getenv("AMAP_SERVER_KEY"),
		GeocodeTimeout:    time.Duration(num("GEOCODE_TIMEOUT_MS", 4000)) * time.Millisecond,
		GeocodeCacheSize:  num("GEOCODE_CACHE_SIZE", 4096),
		GeocodeCacheTTL:   time.Duration(num("GEOCODE_CACHE_TTL_S", 86400)) * time.Second,

		RedisEnable: os.Getenv("REDIS_ENABLE") == "true",
		RedisAddr:   str("REDIS_HOST", "127.0.0.1") + ":" + str("REDIS_PORT", "6379"),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     num("REDIS_DB", 0),

		PostgresDSN: BuildPostgresDSN(),
		PGMaxOpen:   num("PG_MAX_OPEN_CONNS", 10),
		PGMaxIdle:   num("PG_MAX_IDLE_CONNS", 5),

		GeoIPPath:     os.Getenv("GEOIP_MMDB_PATH"),
		GeoIPLang:     str("GEOIP_LANG", "en"),
		IP2RegionPath: os.Getenv("IP2REGION_V4_PATH"),
		IP2RegionV6:   os.Getenv("IP2REGION_V6_PATH"),

		RateLimitEnabled: os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:     num("RATE_LIMIT_QPS", 200),
	}
	if c.APIBase == "" {
		c.APIBase = "/api"
	}
	return c
}

// BuildPostgresDSN：由 PG_* 环境变量拼装连接串；PG_DSN 存在时直接使用
func BuildPostgresDSN() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	dsn := "postgres://" + str("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + str("PG_HOST", "localhost") + ":" + str("PG_PORT", "5432") + "/" + str("PG_DB", "zones")
	dsn += "?sslmode=" + str("PG_SSLMODE", "disable")
	return dsn
}

func str(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// 非法或负数回退默认值
func num(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}
