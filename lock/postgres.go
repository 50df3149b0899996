// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres uses session-level advisory locks. The lock lives on one pooled
// connection, which stays checked out until release.
type Postgres struct {
	pool  *pgxpool.Pool
	retry time.Duration
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, retry: defaultRetry}
}

func (p *Postgres) Lock(ctx context.Context, key string) (Release, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
	}

	for {
		var ok bool
		err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok)
		if err != nil {
			conn.Release()
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
		}
		if ok {
			break
		}
		if err := wait(ctx, p.retry); err != nil {
			conn.Release()
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
				// Closing the session drops every advisory lock it holds.
				slog.Warn("failed to release advisory lock", "key", key, "error", err)
				conn.Conn().Close(ctx)
			}
			conn.Release()
		})
	}, nil
}
