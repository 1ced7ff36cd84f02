// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package economy implements the asynchronous ledger service: personal
// accounts, bank accounts, and the deferred-result plumbing that keeps
// callers off the ledger's hot path.
//
// Every balance-changing operation returns a Pending that resolves to a
// TxResult. Operations on the same account apply in the order the
// caller issued them; operations on distinct accounts are independent.
package economy

import (
	"context"
	"errors"
	"math"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Sentinel causes for failed transactions. Repositories return these;
// the service maps them onto TxResult statuses.
var (
	ErrNoAccount         = errors.New("no such account")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// TxStatus classifies the outcome of a ledger operation.
type TxStatus int

const (
	// TxFailure is a provider-side fault: the backing store errored and
	// the operation may or may not have applied.
	TxFailure TxStatus = iota
	// TxSuccess means the operation applied in full.
	TxSuccess
	// TxInsufficientFunds means a debit or wire was refused because the
	// source held less than the requested amount. Nothing changed.
	TxInsufficientFunds
	// TxNoAccount means the named account does not exist.
	TxNoAccount
)

// String implements fmt.Stringer.
func (s TxStatus) String() string {
	switch s {
	case TxSuccess:
		return "success"
	case TxInsufficientFunds:
		return "insufficient_funds"
	case TxNoAccount:
		return "no_account"
	default:
		return "failure"
	}
}

// TxResult is the terminal outcome of one ledger operation.
type TxResult struct {
	Status TxStatus
	// Amount is the quantity actually moved. Zero unless Status is
	// TxSuccess.
	Amount float64
	// Balance is the account balance after the operation, when the
	// backing store can report it.
	Balance float64
	// Err carries the underlying fault when Status is not TxSuccess.
	Err error
}

// OK reports whether the operation applied.
func (r TxResult) OK() bool { return r.Status == TxSuccess }

// ValidateAmount rejects negative, NaN, and infinite amounts. Zero is
// legal: a zero deposit is a cheap existence probe.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return oops.In("economy").
			Code("INVALID_ARGUMENT").
			With("amount", amount).
			New("amount must be finite")
	}
	if amount < 0 {
		return oops.In("economy").
			Code("INVALID_ARGUMENT").
			With("amount", amount).
			New("amount cannot be negative")
	}
	return nil
}

// Ledger is the personal-account economy contract. All balance methods
// are deferred; callers must not block a hot path on Await.
type Ledger interface {
	// Name identifies the provider.
	Name() string

	// Format renders an amount for display.
	Format(amount float64) string

	HasAccount(ctx context.Context, actor ulid.ULID) *Pending[bool]
	CreateAccount(ctx context.Context, actor ulid.ULID) *Pending[bool]
	Balance(ctx context.Context, actor ulid.ULID) *Pending[float64]
	Credit(ctx context.Context, actor ulid.ULID, amount float64) *Pending[TxResult]
	Debit(ctx context.Context, actor ulid.ULID, amount float64) *Pending[TxResult]
}

// AccountRepository is the storage contract behind a Ledger. Withdraw
// must be atomic: check and deduct under one critical section, failing
// with ErrInsufficientFunds without partial effect.
type AccountRepository interface {
	Exists(ctx context.Context, actor ulid.ULID) (bool, error)
	// Create makes an account with a zero balance. Creating an existing
	// account is a no-op reporting created=false.
	Create(ctx context.Context, actor ulid.ULID) (created bool, err error)
	Balance(ctx context.Context, actor ulid.ULID) (float64, error)
	Deposit(ctx context.Context, actor ulid.ULID, amount float64) (balance float64, err error)
	Withdraw(ctx context.Context, actor ulid.ULID, amount float64) (balance float64, err error)
}

// HasEnough reports whether actor holds at least amount. It issues the
// existence and balance queries together, back to back on the actor's
// lane, so the answer is never built from one stale half. A missing
// account is simply "not enough", never an error.
func HasEnough(ctx context.Context, l Ledger, actor ulid.ULID, amount float64) *Pending[bool] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[bool](err)
	}
	has := l.HasAccount(ctx, actor)
	bal := l.Balance(ctx, actor)
	return Chain(has, func(ok bool) *Pending[bool] {
		if !ok {
			return Resolved(false)
		}
		return Then(bal, func(b float64) bool { return b >= amount })
	})
}
