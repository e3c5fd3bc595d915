package migrate

import (
    "context"
    "database/sql"
    "fmt"

    "zone-api/internal/logger"
)

// 背景：首次运行自动创建区域数据集版本表，保障导入与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；原始数据以 JSONB 原样保存，规范化只在加载期进行
func EnsureSchema(ctx context.Context, db *sql.DB) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS _zone_datasets (
            id BIGSERIAL PRIMARY KEY,
            raw JSONB NOT NULL,
            source TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
        `CREATE INDEX IF NOT EXISTS idx_zone_datasets_created ON _zone_datasets(created_at DESC)`,
    }
    for i, s := range stmts {
        logger.L().Debug("schema_exec", "idx", i)
        if _, err := db.ExecContext(ctx, s); err != nil {
            return fmt.Errorf("schema stmt %d: %w", i, err)
        }
    }
    logger.L().Debug("schema_done")
    return nil
}
