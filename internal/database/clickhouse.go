package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/config"
)

// ClickHouseDB wraps a ClickHouse connection via database/sql.
type ClickHouseDB struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewClickHouseDB opens a ClickHouse connection from a DSN.
func NewClickHouseDB(ctx context.Context, cfg config.ClickHouseConfig, logger *zap.Logger) (*ClickHouseDB, error) {
	db, err := sql.Open("clickhouse", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Info("connected to ClickHouse", zap.String("dsn", cfg.DSN))

	return &ClickHouseDB{DB: db, logger: logger}, nil
}

// Close releases database resources.
func (c *ClickHouseDB) Close() error {
	if c.DB != nil {
		c.logger.Info("ClickHouse connection closed")
		return c.DB.Close()
	}
	return nil
}

// Health checks if ClickHouse is reachable.
func (c *ClickHouseDB) Health(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
