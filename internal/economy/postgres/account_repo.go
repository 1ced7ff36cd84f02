// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/economy"
)

// AccountRepository implements economy.AccountRepository using
// PostgreSQL. The accounts table carries a CHECK (balance >= 0)
// constraint, so overdraw is refused by the database even if the
// guarded UPDATE were bypassed.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Exists reports whether actor holds an account.
func (r *AccountRepository) Exists(ctx context.Context, actor ulid.ULID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE actor_id = $1)
	`, actor.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("ACCOUNT_EXISTS_FAILED").
			With("actor", actor.String()).
			Wrap(err)
	}
	return exists, nil
}

// Create opens an account with a zero balance. Creating an account that
// already exists reports created=false.
func (r *AccountRepository) Create(ctx context.Context, actor ulid.ULID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (actor_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (actor_id) DO NOTHING
	`, actor.String())
	if err != nil {
		return false, oops.Code("ACCOUNT_CREATE_FAILED").
			With("actor", actor.String()).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Balance reads actor's balance.
func (r *AccountRepository) Balance(ctx context.Context, actor ulid.ULID) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE actor_id = $1
	`, actor.String()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("ACCOUNT_NOT_FOUND").
			With("actor", actor.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return 0, oops.Code("ACCOUNT_BALANCE_FAILED").
			With("actor", actor.String()).
			Wrap(err)
	}
	return balance, nil
}

// Deposit adds amount to actor's balance.
func (r *AccountRepository) Deposit(ctx context.Context, actor ulid.ULID, amount float64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $2
		WHERE actor_id = $1
		RETURNING balance
	`, actor.String(), amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("ACCOUNT_NOT_FOUND").
			With("actor", actor.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return 0, oops.Code("ACCOUNT_DEPOSIT_FAILED").
			With("actor", actor.String()).
			Wrap(err)
	}
	return balance, nil
}

// Withdraw deducts amount from actor's balance. The balance guard sits
// in the UPDATE itself, so check and deduct are one statement and
// cannot interleave with a concurrent writer.
func (r *AccountRepository) Withdraw(ctx context.Context, actor ulid.ULID, amount float64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts SET balance = balance - $2
		WHERE actor_id = $1 AND balance >= $2
		RETURNING balance
	`, actor.String(), amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the account is missing or the guard refused the
		// deduction. A follow-up read tells the two apart.
		bal, balErr := r.Balance(ctx, actor)
		if balErr != nil {
			return 0, balErr
		}
		return bal, oops.Code("ACCOUNT_INSUFFICIENT_FUNDS").
			With("actor", actor.String()).
			With("amount", amount).
			Wrap(economy.ErrInsufficientFunds)
	}
	if isCheckViolation(err) {
		return 0, oops.Code("ACCOUNT_INSUFFICIENT_FUNDS").
			With("actor", actor.String()).
			With("amount", amount).
			Wrap(economy.ErrInsufficientFunds)
	}
	if err != nil {
		return 0, oops.Code("ACCOUNT_WITHDRAW_FAILED").
			With("actor", actor.String()).
			Wrap(err)
	}
	return balance, nil
}

// isCheckViolation reports whether err is the balance CHECK constraint
// firing.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}

// Compile-time interface check.
var _ economy.AccountRepository = (*AccountRepository)(nil)
