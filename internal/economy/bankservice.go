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

// BankService implements BankLedger over a BankRepository. It shares
// its owning LedgerService's sequencer, so bank lanes and
// personal-account lanes live in one pool and drain together on Close.
type BankService struct {
	name   string
	repo   BankRepository
	seq    *sequencer
	logger *slog.Logger
}

var _ BankLedger = (*BankService)(nil)

// NewBankService builds a bank provider over repo, sequenced alongside
// ledger's personal-account lanes.
func NewBankService(name string, repo BankRepository, ledger *LedgerService, logger *slog.Logger) *BankService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BankService{
		name:   name,
		repo:   repo,
		seq:    ledger.seq,
		logger: logger,
	}
}

// Name implements BankLedger.
func (s *BankService) Name() string { return s.name }

func bankLane(bank ulid.ULID) string { return "bank:" + bank.String() }

// CreateBank implements BankLedger.
func (s *BankService) CreateBank(ctx context.Context, owner ulid.ULID, name string) *Pending[TxResult] {
	if name == "" {
		return Failed[TxResult](oops.In("economy").
			Code("INVALID_ARGUMENT").
			New("bank name cannot be empty"))
	}
	out := NewPending[TxResult]()
	s.seq.submit(accountLane(owner), func() {
		start := time.Now()
		_, err := s.repo.CreateBank(ctx, owner, name)
		res := s.finish("create_bank", err, 0, 0, start)
		out.Resolve(res)
	})
	return out
}

// OwnerBank implements BankLedger.
func (s *BankService) OwnerBank(ctx context.Context, owner ulid.ULID) *Pending[Bank] {
	out := NewPending[Bank]()
	s.seq.submit(accountLane(owner), func() {
		bank, err := s.repo.OwnerBank(ctx, owner)
		if err != nil {
			out.Fail(s.wrap("owner_bank", err))
			return
		}
		out.Resolve(bank)
	})
	return out
}

// BankBalance implements BankLedger.
func (s *BankService) BankBalance(ctx context.Context, bank ulid.ULID) *Pending[float64] {
	out := NewPending[float64]()
	s.seq.submit(bankLane(bank), func() {
		bal, err := s.repo.BankBalance(ctx, bank)
		if err != nil {
			out.Fail(s.wrap("bank_balance", err))
			return
		}
		out.Resolve(bal)
	})
	return out
}

// BankDeposit implements BankLedger.
func (s *BankService) BankDeposit(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[TxResult](err)
	}
	out := NewPending[TxResult]()
	s.seq.submit(bankLane(bank), func() {
		start := time.Now()
		bal, err := s.repo.BankDeposit(ctx, bank, amount)
		out.Resolve(s.finish("bank_deposit", err, amount, bal, start))
	})
	return out
}

// BankWithdraw implements BankLedger.
func (s *BankService) BankWithdraw(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[TxResult](err)
	}
	out := NewPending[TxResult]()
	s.seq.submit(bankLane(bank), func() {
		start := time.Now()
		bal, err := s.repo.BankWithdraw(ctx, bank, amount)
		out.Resolve(s.finish("bank_withdraw", err, amount, bal, start))
	})
	return out
}

// BankWire implements BankLedger. The repository debits the owner's
// personal account and credits the pool under one critical section, so
// a failed wire leaves both balances as they were.
func (s *BankService) BankWire(ctx context.Context, bank ulid.ULID, amount float64) *Pending[TxResult] {
	if err := ValidateAmount(amount); err != nil {
		return Failed[TxResult](err)
	}
	out := NewPending[TxResult]()
	s.seq.submit(bankLane(bank), func() {
		start := time.Now()
		bal, err := s.repo.Wire(ctx, bank, amount)
		out.Resolve(s.finish("bank_wire", err, amount, bal, start))
	})
	return out
}

// Banks implements BankLedger.
func (s *BankService) Banks(ctx context.Context) *Pending[[]Bank] {
	return Go(func() ([]Bank, error) {
		banks, err := s.repo.Banks(ctx)
		if err != nil {
			return nil, s.wrap("banks", err)
		}
		return banks, nil
	})
}

func (s *BankService) finish(op string, err error, amount, bal float64, start time.Time) TxResult {
	res := classify(amount, bal, err)
	observability.RecordTransaction(s.name, op, res.Status.String(), time.Since(start).Seconds())
	if res.Status == TxFailure {
		errutil.LogError(s.logger, "bank operation failed", oops.In("economy").
			Code("PROVIDER_FAILURE").
			With("op", op).
			With("amount", amount).
			Wrap(err))
	}
	return res
}

func (s *BankService) wrap(op string, err error) error {
	if errors.Is(err, ErrNoAccount) {
		return oops.In("economy").
			Code("NOT_FOUND").
			With("op", op).
			Wrap(err)
	}
	return oops.In("economy").
		Code("PROVIDER_FAILURE").
		With("op", op).
		Wrap(err)
}
