package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roller/trackgen/internal/config"
	"go.uber.org/zap"
)

// DB wraps a pgx connection pool used for diagnostics snapshots.
type DB struct {
	Pool    *pgxpool.Pool
	timeout time.Duration
	log     *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(max(cfg.MaxOpenConns, 1))
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Info("database connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
	)
	return &DB{Pool: pool, timeout: timeout, log: log}, nil
}

// Context returns a child of parent bounded by the configured query timeout.
func (db *DB) Context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, db.timeout)
}

func (db *DB) Close() {
	db.Pool.Close()
}
