// 包 ingest：把仓库中的原始数据集加载为快照并原子替换，运行在服务进程内的后台协程
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zone-api/internal/logger"
	"zone-api/internal/metrics"
	"zone-api/internal/store"
	"zone-api/internal/zone"
)

// Swapper：接收新快照的一方（通常为 *zone.Engine）
type Swapper interface {
	Snapshot() *zone.Dataset
	Swap(ds *zone.Dataset)
}

// 文档注释：执行一次刷新
// 背景：仓库 → LoadDataset → 原子替换；任一步失败都保留旧快照并返回错误，由调用方决定是否记录。
// 约束：仓库为空（ErrNoDataset）不视为失败，返回 nil 且不替换。
func ReloadOnce(ctx context.Context, repo store.Repository, sw Swapper) error {
	raw, err := repo.Load(ctx)
	if errors.Is(err, store.ErrNoDataset) {
		metrics.DatasetReloadTotal.WithLabelValues("empty").Inc()
		logger.L().Warn("dataset_reload_empty")
		return nil
	}
	if err != nil {
		metrics.DatasetReloadTotal.WithLabelValues("load_error").Inc()
		return fmt.Errorf("load dataset: %w", err)
	}
	ds, err := zone.LoadDataset(raw)
	if err != nil {
		metrics.DatasetReloadTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("parse dataset: %w", err)
	}
	sw.Swap(ds)
	metrics.DatasetReloadTotal.WithLabelValues("ok").Inc()
	return nil
}

// 文档注释：按固定间隔刷新
// 背景：由管理工具写入的新版本最迟在一个间隔后生效；错误只记录，任务继续调度。
// 约束：interval<=0 时不启动；ctx 取消后协程退出，返回的通道随之关闭。
func StartReloader(ctx context.Context, repo store.Repository, sw Swapper, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	l := logger.L()
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				l.Info("reloader_stop")
				return
			case <-t.C:
				if err := ReloadOnce(ctx, repo, sw); err != nil {
					l.Error("dataset_reload_error", "err", err, "kept_zones", sw.Snapshot().Len())
				} else {
					l.Debug("dataset_reload_done", "zones", sw.Snapshot().Len())
				}
			}
		}
	}()
	return done
}
