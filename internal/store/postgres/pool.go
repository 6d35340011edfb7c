package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions configures NewPool.
type PoolOptions struct {
	URL         string        // postgres://host:5432/db?sslmode=require
	Password    string        // overrides any password embedded in URL
	MaxConns    int32         // 0 keeps the pgx default
	PingTimeout time.Duration // connectivity check on startup
}

// NewPool builds a pgxpool and validates connectivity.
func NewPool(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, err
	}

	if opts.Password != "" {
		pcfg.ConnConfig.Password = opts.Password
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := ping(ctx, pool, timeout); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func ping(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}
