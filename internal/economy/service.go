// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/observability"
	"github.com/tollgate/tollgate/pkg/errutil"
)

// LedgerService implements Ledger over an AccountRepository. Operations
// on one account are applied in the order the caller issued them; the
// per-key sequencer provides that without serializing unrelated
// accounts against each other.
type LedgerService struct {
	name   string
	repo   AccountRepository
	format Formatter
	seq    *sequencer
	logger *slog.Logger
}

var _ Ledger = (*LedgerService)(nil)

// NewLedgerService builds a ledger provider named name over repo.
// A nil logger discards.
func NewLedgerService(name string, repo AccountRepository, format Formatter, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LedgerService{
		name:   name,
		repo:   repo,
		format: format,
		seq:    newSequencer(),
		logger: logger,
	}
}

// Close drains all in-flight operations and stops the sequencer.
func (s *LedgerService) Close() { s.seq.close() }

// Name implements Ledger.
func (s *LedgerService) Name() string { return s.name }

// Format implements Ledger.
func (s *LedgerService) Format(amount float64) string { return s.format.Format(amount) }

func accountLane(actor ulid.ULID) string { return "actor:" + actor.String() }

// HasAccount implements Ledger.
func (s *LedgerService) HasAccount(ctx context.Context, actor ulid.ULID) *Pending[bool] {
	out := NewPending[bool]()
	s.seq.submit(accountLane(actor), func() {
		ok, err := s.repo.Exists(ctx, actor)
		if err != nil {
			out.Fail(s.wrap("has_account", actor, err))
			return
		}
		out.Resolve(ok)
	})
	return out
}

// CreateAccount implements Ledger. Creating an account that already
// exists resolves false without error.
func (s *LedgerService) CreateAccount(ctx context.Context, actor ulid.ULID) *Pending[bool] {
	out := NewPending[bool]()
	s.seq.submit(accountLane(actor), func() {
		created, err := s.repo.Create(ctx, actor)
		if err != nil {
			out.Fail(s.wrap("create_account", actor, err))
			return
		}
		out.Resolve(created)
	})
	return out
}

// Balance implements Ledger. A missing account fails with NOT_FOUND.
func (s *LedgerService) Balance(ctx context.Context, actor ulid.ULID) *Pending[float64] {
	out := NewPending[float64]()
	s.seq.submit(accountLane(actor), func() {
		bal, err := s.repo.Balance(ctx, actor)
		if err != nil {
			out.Fail(s.wrap("balance", actor, err))
			return
		}
		out.Resolve(bal)
	})
	return out
}

// Credit implements Ledger.
func (s *LedgerService) Credit(ctx context.Context, actor ulid.ULID, amount float64) *Pending[TxResult] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[TxResult](err)
	}
	out := NewPending[TxResult]()
	s.seq.submit(accountLane(actor), func() {
		start := time.Now()
		bal, err := s.repo.Deposit(ctx, actor, amount)
		res := s.finish("credit", actor, amount, bal, err, start)
		out.Resolve(res)
	})
	return out
}

// Debit implements Ledger. Refuses overdraw: on TxInsufficientFunds the
// balance is untouched.
func (s *LedgerService) Debit(ctx context.Context, actor ulid.ULID, amount float64) *Pending[TxResult] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[TxResult](err)
	}
	out := NewPending[TxResult]()
	s.seq.submit(accountLane(actor), func() {
		start := time.Now()
		bal, err := s.repo.Withdraw(ctx, actor, amount)
		res := s.finish("debit", actor, amount, bal, err, start)
		out.Resolve(res)
	})
	return out
}

// finish classifies a repository outcome into a TxResult and records
// the transaction metric.
func (s *LedgerService) finish(op string, actor ulid.ULID, amount, bal float64, err error, start time.Time) TxResult {
	res := classify(amount, bal, err)
	observability.RecordTransaction(s.name, op, res.Status.String(), time.Since(start).Seconds())
	if res.Status == TxFailure {
		errutil.LogError(s.logger, "ledger operation failed", oops.In("economy").
			Code("PROVIDER_FAILURE").
			With("op", op).
			With("actor", actor.String()).
			With("amount", amount).
			Wrap(err))
	}
	return res
}

func (s *LedgerService) wrap(op string, actor ulid.ULID, err error) error {
	if errors.Is(err, ErrNoAccount) {
		return oops.In("economy").
			Code("NOT_FOUND").
			With("op", op).
			With("actor", actor.String()).
			Wrap(err)
	}
	return oops.In("economy").
		Code("PROVIDER_FAILURE").
		With("op", op).
		With("actor", actor.String()).
		Wrap(err)
}

// classify maps a repository result onto the TxResult taxonomy.
func classify(amount, bal float64, err error) TxResult {
	switch {
	case err == nil:
		return TxResult{Status: TxSuccess, Amount: amount, Balance: bal}
	case errors.Is(err, ErrInsufficientFunds):
		return TxResult{Status: TxInsufficientFunds, Balance: bal, Err: err}
	case errors.Is(err, ErrNoAccount):
		return TxResult{Status: TxNoAccount, Err: err}
	default:
		return TxResult{Status: TxFailure, Err: err}
	}
}
