// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package postgres implements the economy repositories over PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the slice of pgxpool.Pool the repositories need. It is
// satisfied by both *pgxpool.Pool and pgxmock's pool.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}
