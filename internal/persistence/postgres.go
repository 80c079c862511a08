package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/config"
)

// ErrPostgresNotConfigured is returned when no DSN was provided.
var ErrPostgresNotConfigured = errors.New("postgres: POSTGRES_DSN not configured")

// Postgres wraps access to a lazily created pgx connection pool.
type Postgres struct {
	lazy   *Lazy[*pgxpool.Pool]
	logger *zap.Logger
}

// NewPostgres prepares the pool. The connection is made on first use.
func NewPostgres(cfg config.PostgresConfig, logger *zap.Logger) *Postgres {
	p := &Postgres{logger: logger}
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; postgres-backed routes will fail")
	}
	p.lazy = NewLazy(func(ctx context.Context) (*pgxpool.Pool, error) {
		return connectPostgres(ctx, cfg, logger)
	}, func(pool *pgxpool.Pool) {
		pool.Close()
	})
	return p
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, ErrPostgresNotConfigured
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return pool, nil
}

// Pool returns the shared pool, connecting on first call.
func (p *Postgres) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	return p.lazy.Get(ctx)
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	pool, err := p.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.lazy != nil {
		p.lazy.Close()
	}
}
