// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package store provides the PostgreSQL connection pool and schema
// migration tooling behind the economy repositories.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connect opens a pgx pool against databaseURL and verifies it with a
// retried ping. Hosts often race their database on startup, so the ping
// backs off fibonacci-style for up to maxWait before giving up.
func Connect(ctx context.Context, databaseURL string, maxWait time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.In("store").
			Code("DB_CONFIG_INVALID").
			Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.In("store").
			Code("DB_CONNECT_FAILED").
			Wrap(err)
	}

	backoff := retry.WithMaxDuration(maxWait, retry.NewFibonacci(250*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.In("store").
			Code("DB_PING_FAILED").
			With("max_wait", maxWait.String()).
			Wrap(err)
	}

	return pool, nil
}
