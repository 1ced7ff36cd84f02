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

// BankRepository implements economy.BankRepository using PostgreSQL.
// Wire runs owner debit and bank credit in one transaction.
type BankRepository struct {
	pool poolIface
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(pool poolIface) *BankRepository {
	return &BankRepository{pool: pool}
}

// CreateBank opens a bank for owner. The banks table holds a unique
// index on owner_id, so a second bank for the same owner is refused by
// the database.
func (r *BankRepository) CreateBank(ctx context.Context, owner ulid.ULID, name string) (economy.Bank, error) {
	bank := economy.Bank{ID: ulid.Make(), Owner: owner, Name: name}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO banks (id, owner_id, name, balance)
		VALUES ($1, $2, $3, 0)
	`, bank.ID.String(), owner.String(), name)
	if isUniqueViolation(err) {
		return economy.Bank{}, oops.Code("INVALID_ARGUMENT").
			With("owner", owner.String()).
			Wrapf(err, "owner already holds a bank")
	}
	if err != nil {
		return economy.Bank{}, oops.Code("BANK_CREATE_FAILED").
			With("owner", owner.String()).
			With("name", name).
			Wrap(err)
	}
	return bank, nil
}

// isUniqueViolation reports whether err is the owner_id unique index
// firing.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// OwnerBank looks up owner's bank.
func (r *BankRepository) OwnerBank(ctx context.Context, owner ulid.ULID) (economy.Bank, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, balance FROM banks WHERE owner_id = $1
	`, owner.String())

	bank, err := scanBank(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return economy.Bank{}, oops.Code("BANK_NOT_FOUND").
			With("owner", owner.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return economy.Bank{}, oops.Code("BANK_GET_FAILED").
			With("owner", owner.String()).
			Wrap(err)
	}
	return bank, nil
}

// BankBalance reads a bank's pool.
func (r *BankRepository) BankBalance(ctx context.Context, bank ulid.ULID) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM banks WHERE id = $1
	`, bank.String()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("BANK_NOT_FOUND").
			With("bank", bank.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return 0, oops.Code("BANK_BALANCE_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}
	return balance, nil
}

// BankDeposit adds amount to a bank's pool.
func (r *BankRepository) BankDeposit(ctx context.Context, bank ulid.ULID, amount float64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		UPDATE banks SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, bank.String(), amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("BANK_NOT_FOUND").
			With("bank", bank.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return 0, oops.Code("BANK_DEPOSIT_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}
	return balance, nil
}

// BankWithdraw deducts amount from a bank's pool with the same guarded
// UPDATE as personal accounts.
func (r *BankRepository) BankWithdraw(ctx context.Context, bank ulid.ULID, amount float64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `
		UPDATE banks SET balance = balance - $2
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`, bank.String(), amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		bal, balErr := r.BankBalance(ctx, bank)
		if balErr != nil {
			return 0, balErr
		}
		return bal, oops.Code("BANK_INSUFFICIENT_FUNDS").
			With("bank", bank.String()).
			With("amount", amount).
			Wrap(economy.ErrInsufficientFunds)
	}
	if isCheckViolation(err) {
		return 0, oops.Code("BANK_INSUFFICIENT_FUNDS").
			With("bank", bank.String()).
			With("amount", amount).
			Wrap(economy.ErrInsufficientFunds)
	}
	if err != nil {
		return 0, oops.Code("BANK_WITHDRAW_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}
	return balance, nil
}

// Wire moves amount from the bank owner's personal account into the
// bank's pool. Both sides commit or neither does.
func (r *BankRepository) Wire(ctx context.Context, bank ulid.ULID, amount float64) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, oops.Code("BANK_WIRE_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var owner string
	var poolBalance float64
	err = tx.QueryRow(ctx, `
		SELECT owner_id, balance FROM banks WHERE id = $1
	`, bank.String()).Scan(&owner, &poolBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("BANK_NOT_FOUND").
			With("bank", bank.String()).
			Wrap(economy.ErrNoAccount)
	}
	if err != nil {
		return 0, oops.Code("BANK_WIRE_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $2
		WHERE actor_id = $1 AND balance >= $2
	`, owner, amount)
	if err != nil {
		return 0, oops.Code("BANK_WIRE_FAILED").
			With("bank", bank.String()).
			With("owner", owner).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the owner has no account or the guard refused the
		// debit. A follow-up read tells the two apart.
		var ownerBalance float64
		err := tx.QueryRow(ctx, `
			SELECT balance FROM accounts WHERE actor_id = $1
		`, owner).Scan(&ownerBalance)
		if errors.Is(err, pgx.ErrNoRows) {
			return poolBalance, oops.Code("ACCOUNT_NOT_FOUND").
				With("owner", owner).
				Wrap(economy.ErrNoAccount)
		}
		if err != nil {
			return 0, oops.Code("BANK_WIRE_FAILED").
				With("bank", bank.String()).
				Wrap(err)
		}
		return poolBalance, oops.Code("ACCOUNT_INSUFFICIENT_FUNDS").
			With("owner", owner).
			With("amount", amount).
			Wrap(economy.ErrInsufficientFunds)
	}

	var bankBalance float64
	err = tx.QueryRow(ctx, `
		UPDATE banks SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, bank.String(), amount).Scan(&bankBalance)
	if err != nil {
		return 0, oops.Code("BANK_WIRE_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, oops.Code("BANK_WIRE_FAILED").
			With("bank", bank.String()).
			Wrap(err)
	}
	return bankBalance, nil
}

// Banks lists all banks, newest first.
func (r *BankRepository) Banks(ctx context.Context) ([]economy.Bank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, balance FROM banks ORDER BY id DESC
	`)
	if err != nil {
		return nil, oops.Code("BANK_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var banks []economy.Bank
	for rows.Next() {
		bank, err := scanBank(rows)
		if err != nil {
			return nil, oops.Code("BANK_LIST_FAILED").Wrap(err)
		}
		banks = append(banks, bank)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BANK_LIST_FAILED").Wrap(err)
	}
	return banks, nil
}

// scanBank scans one banks row. Callers handle pgx.ErrNoRows.
func scanBank(row pgx.Row) (economy.Bank, error) {
	var idStr, ownerStr, name string
	var balance float64
	if err := row.Scan(&idStr, &ownerStr, &name, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return economy.Bank{}, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return economy.Bank{}, oops.Code("BANK_SCAN_FAILED").Wrap(err)
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return economy.Bank{}, oops.Code("BANK_INVALID_ID").With("id", idStr).Wrap(err)
	}
	owner, err := ulid.Parse(ownerStr)
	if err != nil {
		return economy.Bank{}, oops.Code("BANK_INVALID_OWNER").With("owner", ownerStr).Wrap(err)
	}
	return economy.Bank{ID: id, Owner: owner, Name: name, Balance: balance}, nil
}

// Compile-time interface check.
var _ economy.BankRepository = (*BankRepository)(nil)
