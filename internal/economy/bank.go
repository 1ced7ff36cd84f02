// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
)

// Bank is a shared pool of funds owned by one actor.
type Bank struct {
	ID      ulid.ULID
	Owner   ulid.ULID
	Name    string
	Balance float64
}

// BankLedger is the bank-account economy contract. Like Ledger, every
// balance method is deferred.
type BankLedger interface {
	// Name identifies the provider.
	Name() string

	// CreateBank opens a bank for owner. An owner holds at most one
	// bank; a second create fails with TxFailure.
	CreateBank(ctx context.Context, owner ulid.ULID, name string) *Pending[TxResult]
	// OwnerBank looks up owner's bank.
	OwnerBank(ctx context.Context, owner ulid.ULID) *Pending[Bank]
	// BankBalance reads a bank's pool.
	BankBalance(ctx context.Context, bank ulid.ULID) *Pending[float64]
	// BankDeposit adds to a bank's pool.
	BankDeposit(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult]
	// BankWithdraw removes from a bank's pool, refusing overdraw.
	BankWithdraw(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult]
	// BankWire moves amount from the owner's personal account into the
	// bank's pool as one atomic step: no interleaved reader sees the
	// account debited without the pool credited.
	BankWire(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult]
	// Banks lists all banks. Order is provider-defined.
	Banks(ctx context.Context) *Pending[[]Bank]
}

// BankRepository is the storage contract behind a BankLedger. Withdraw
// and Wire carry the same atomicity demands as AccountRepository.
type BankRepository interface {
	CreateBank(ctx context.Context, owner ulid.ULID, name string) (Bank, error)
	OwnerBank(ctx context.Context, owner ulid.ULID) (Bank, error)
	BankBalance(ctx context.Context, bank ulid.ULID) (float64, error)
	BankDeposit(ctx context.Context, bank ulid.ULID, amount float64) (balance float64, err error)
	BankWithdraw(ctx context.Context, bank ulid.ULID, amount float64) (balance float64, err error)
	// Wire debits the bank owner's personal account and credits the
	// bank's pool in one atomic step, returning the pool's new balance.
	// A refused wire reports the pool unchanged.
	Wire(ctx context.Context, bank ulid.ULID, amount float64) (bankBalance float64, err error)
	Banks(ctx context.Context) ([]Bank, error)
}

// BankHasEnough reports whether a bank's pool holds at least amount,
// with the same resolution rule as HasEnough: the answer comes from a
// completed read, and a missing bank is "not enough", never an error.
func BankHasEnough(ctx context.Context, l BankLedger, bank ulid.ULID, amount float64) *Pending[bool] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[bool](err)
	}
	return Then(readPool(ctx, l, bank), func(p poolRead) bool {
		return p.found && p.balance >= amount
	})
}

// poolRead is a bank balance with a missing bank folded into
// found=false.
type poolRead struct {
	found   bool
	balance float64
}

// readPool reads a bank's pool, treating a missing bank as an empty
// read rather than a failure.
func readPool(ctx context.Context, l BankLedger, bank ulid.ULID) *Pending[poolRead] {
	bal := l.BankBalance(ctx, bank)
	out := NewPending[poolRead]()
	go func() {
		b, err := bal.Await(ctx)
		if err != nil {
			if errors.Is(err, ErrNoAccount) {
				out.Resolve(poolRead{})
				return
			}
			out.Fail(err)
			return
		}
		out.Resolve(poolRead{found: true, balance: b})
	}()
	return out
}
