package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zone-api/internal/logger"
)

// 文档注释：PostgreSQL 仓库（带版本历史）
// 背景：管理工具每次发布写入新行，加载取最新一行；保留最近 keep 个版本以便回滚，其余清理。
// 约束：keep<=0 表示不清理；原始 JSON 以 JSONB 存储，写入前由调用方校验可加载。
type PostgresRepository struct {
	db     *sql.DB
	source string
	keep   int
}

func NewPostgresRepository(db *sql.DB, source string, keep int) *PostgresRepository {
	return &PostgresRepository{db: db, source: source, keep: keep}
}

func (p *PostgresRepository) Load(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT raw FROM _zone_datasets ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("load zone dataset: %w", err)
	}
	logger.L().Debug("db_zones_loaded", "bytes", len(raw))
	return raw, nil
}

func (p *PostgresRepository) Save(ctx context.Context, raw []byte) error {
	_, err := p.SaveVersion(ctx, raw, p.source)
	return err
}

// SaveVersion：写入新版本并返回版本号；清理失败只记录日志
func (p *PostgresRepository) SaveVersion(ctx context.Context, raw []byte, source string) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `INSERT INTO _zone_datasets(raw, source) VALUES($1, $2) RETURNING id`, string(raw), source).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save zone dataset: %w", err)
	}
	logger.L().Info("db_zones_saved", "version", id, "source", source, "bytes", len(raw))
	if p.keep > 0 {
		res, err := p.db.ExecContext(ctx, `DELETE FROM _zone_datasets WHERE id NOT IN (SELECT id FROM _zone_datasets ORDER BY id DESC LIMIT $1)`, p.keep)
		if err != nil {
			logger.L().Error("db_zones_prune_error", "err", err)
		} else if n, _ := res.RowsAffected(); n > 0 {
			logger.L().Debug("db_zones_pruned", "rows", n, "keep", p.keep)
		}
	}
	return id, nil
}

// Version：历史版本摘要
type Version struct {
	ID        int64
	Source    string
	Bytes     int
	CreatedAt time.Time
}

// Versions：按新到旧列出最近 limit 个版本
func (p *PostgresRepository) Versions(ctx context.Context, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `SELECT id, source, octet_length(raw::text), created_at FROM _zone_datasets ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list zone datasets: %w", err)
	}
	defer rows.Close()
	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.Source, &v.Bytes, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Rollback：把历史版本复制为最新版本（不删除中间版本，回滚本身也可回滚）
func (p *PostgresRepository) Rollback(ctx context.Context, id int64) (int64, error) {
	var newID int64
	err := p.db.QueryRowContext(ctx, `INSERT INTO _zone_datasets(raw, source)
        SELECT raw, 'rollback:' || id::text FROM _zone_datasets WHERE id=$1
        RETURNING id`, id).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoDataset
	}
	if err != nil {
		return 0, fmt.Errorf("rollback zone dataset %d: %w", id, err)
	}
	logger.L().Info("db_zones_rollback", "from", id, "version", newID)
	return newID, nil
}
