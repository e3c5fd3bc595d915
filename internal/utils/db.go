package utils

import (
	"database/sql"
	"fmt"

	"zone-api/internal/config"

	_ "github.com/lib/pq"
)

// OpenPostgres：打开连接池（不探活，首次查询时建立连接）
func OpenPostgres(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	return db, nil
}

func OpenPostgresFromConfig(c *config.Config) (*sql.DB, error) {
	return OpenPostgres(c.PostgresDSN, c.PGMaxOpen, c.PGMaxIdle)
}
