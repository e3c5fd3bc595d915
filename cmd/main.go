// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zone-api/internal/api"
	"zone-api/internal/config"
	"zone-api/internal/geocode"
	"zone-api/internal/ingest"
	"zone-api/internal/iphint"
	"zone-api/internal/logger"
	"zone-api/internal/metrics"
	"zone-api/internal/middleware"
	"zone-api/internal/migrate"
	"zone-api/internal/store"
	"zone-api/internal/utils"
	"zone-api/internal/zone"
)

func main() {
	cfg := config.Load()
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := utils.OpenRedisFromConfig(ctx, cfg)
	if rc != nil {
		defer rc.Close()
	}

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		l.Error("repository_error", "source", cfg.ZonesSource, "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	engine := zone.NewEngine(zone.NewStore(nil), geocode.FromConfig(cfg, rc), cfg.GeocodeTimeout)
	// 首次加载失败不退出：以空快照启动，等待后台刷新或管理接口上传
	if err := ingest.ReloadOnce(ctx, repo, engine); err != nil {
		l.Error("dataset_initial_load_error", "err", err)
	}
	l.Info("dataset_ready", "zones", engine.Snapshot().Len(), "source", cfg.ZonesSource)
	reloaderDone := ingest.StartReloader(ctx, repo, engine, cfg.ReloadEvery)

	deps := api.Deps{Engine: engine, Repo: repo, AdminToken: cfg.AdminToken}
	if h := openHints(cfg); h != nil {
		deps.Hints = h
		defer func() {
			if err := h.Close(); err != nil {
				l.Warn("visitor_hint_close_error", "err", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(deps)))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(cfg.RateLimitEnabled, cfg.RateLimitQPS)(handler)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	<-reloaderDone
	l.Info("shutdown_done")
}

// openRepository：按 ZONES_SOURCE 选择仓库；postgres 模式下确保表结构存在
func openRepository(ctx context.Context, cfg *config.Config) (store.Repository, func(), error) {
	if cfg.ZonesSource != "postgres" {
		logger.L().Debug("config_zones_file", "path", cfg.ZonesFile)
		return store.NewFileRepository(cfg.ZonesFile), func() {}, nil
	}
	db, err := utils.OpenPostgresFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		logger.L().Error("db_ping_error", "err", err)
	} else {
		logger.L().Info("db_ping_ok")
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.NewPostgresRepository(db, "admin", cfg.HistoryKeep), func() { _ = db.Close() }, nil
}

// openHints：按配置打开 IP 库；均未配置或打开失败时返回 nil（访客接口返回未覆盖）
func openHints(cfg *config.Config) *iphint.Chain {
	l := logger.L()
	var srcs []iphint.Source
	if cfg.GeoIPPath != "" {
		if m, err := iphint.OpenMMDB(cfg.GeoIPPath, cfg.GeoIPLang); err != nil {
			l.Error("mmdb_error", "err", err)
		} else {
			srcs = append(srcs, m)
		}
	}
	if cfg.IP2RegionPath != "" || cfg.IP2RegionV6 != "" {
		if c, err := iphint.OpenIP2Region(cfg.IP2RegionPath, cfg.IP2RegionV6); err != nil {
			l.Error("ip2region_error", "err", err)
		} else {
			srcs = append(srcs, c)
			l.Info("ip2region_ready")
		}
	}
	if len(srcs) == 0 {
		l.Info("visitor_hint_disabled")
		return nil
	}
	return iphint.NewChain(srcs...)
}
