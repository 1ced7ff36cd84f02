// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MemoryAccounts is the bundled in-memory AccountRepository. One mutex
// covers the whole book; balance checks and mutations never interleave.
type MemoryAccounts struct {
	mu       sync.Mutex
	balances map[ulid.ULID]float64
}

var _ AccountRepository = (*MemoryAccounts)(nil)

// NewMemoryAccounts returns an empty account book.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{balances: make(map[ulid.ULID]float64)}
}

// Exists implements AccountRepository.
func (m *MemoryAccounts) Exists(_ context.Context, actor ulid.ULID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.balances[actor]
	return ok, nil
}

// Create implements AccountRepository.
func (m *MemoryAccounts) Create(_ context.Context, actor ulid.ULID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[actor]; ok {
		return false, nil
	}
	m.balances[actor] = 0
	return true, nil
}

// Balance implements AccountRepository.
func (m *MemoryAccounts) Balance(_ context.Context, actor ulid.ULID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[actor]
	if !ok {
		return 0, ErrNoAccount
	}
	return bal, nil
}

// Deposit implements AccountRepository.
func (m *MemoryAccounts) Deposit(_ context.Context, actor ulid.ULID, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[actor]
	if !ok {
		return 0, ErrNoAccount
	}
	bal += amount
	m.balances[actor] = bal
	return bal, nil
}

// Withdraw implements AccountRepository.
func (m *MemoryAccounts) Withdraw(_ context.Context, actor ulid.ULID, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[actor]
	if !ok {
		return 0, ErrNoAccount
	}
	if bal < amount {
		return bal, ErrInsufficientFunds
	}
	bal -= amount
	m.balances[actor] = bal
	return bal, nil
}

// debit removes from an existing account, refusing overdraw, with the
// caller already holding m's own mutex. Used by MemoryBanks.Wire.
func (m *MemoryAccounts) debit(actor ulid.ULID, amount float64) (float64, error) {
	bal, ok := m.balances[actor]
	if !ok {
		return 0, ErrNoAccount
	}
	if bal < amount {
		return bal, ErrInsufficientFunds
	}
	bal -= amount
	m.balances[actor] = bal
	return bal, nil
}

// MemoryBanks is the bundled in-memory BankRepository. It holds a
// reference to the personal-account book so Wire can move both sides
// under both locks.
type MemoryBanks struct {
	mu       sync.Mutex
	accounts *MemoryAccounts
	banks    map[ulid.ULID]*Bank
	byOwner  map[ulid.ULID]ulid.ULID
}

var _ BankRepository = (*MemoryBanks)(nil)

// NewMemoryBanks returns an empty bank book wired to accounts.
func NewMemoryBanks(accounts *MemoryAccounts) *MemoryBanks {
	return &MemoryBanks{
		accounts: accounts,
		banks:    make(map[ulid.ULID]*Bank),
		byOwner:  make(map[ulid.ULID]ulid.ULID),
	}
}

// CreateBank implements BankRepository. An owner holds at most one
// bank.
func (m *MemoryBanks) CreateBank(_ context.Context, owner ulid.ULID, name string) (Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byOwner[owner]; ok {
		return Bank{}, oops.In("economy").
			Code("INVALID_ARGUMENT").
			With("owner", owner.String()).
			New("owner already holds a bank")
	}
	bank := &Bank{ID: ulid.Make(), Owner: owner, Name: name}
	m.banks[bank.ID] = bank
	m.byOwner[owner] = bank.ID
	return *bank, nil
}

// OwnerBank implements BankRepository.
func (m *MemoryBanks) OwnerBank(_ context.Context, owner ulid.ULID) (Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOwner[owner]
	if !ok {
		return Bank{}, ErrNoAccount
	}
	return *m.banks[id], nil
}

// BankBalance implements BankRepository.
func (m *MemoryBanks) BankBalance(_ context.Context, bank ulid.ULID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.banks[bank]
	if !ok {
		return 0, ErrNoAccount
	}
	return b.Balance, nil
}

// BankDeposit implements BankRepository.
func (m *MemoryBanks) BankDeposit(_ context.Context, bank ulid.ULID, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.banks[bank]
	if !ok {
		return 0, ErrNoAccount
	}
	b.Balance += amount
	return b.Balance, nil
}

// BankWithdraw implements BankRepository.
func (m *MemoryBanks) BankWithdraw(_ context.Context, bank ulid.ULID, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.banks[bank]
	if !ok {
		return 0, ErrNoAccount
	}
	if b.Balance < amount {
		return b.Balance, ErrInsufficientFunds
	}
	b.Balance -= amount
	return b.Balance, nil
}

// Wire implements BankRepository. Both locks are held for the whole
// move, so no reader observes the owner debited without the pool
// credited.
func (m *MemoryBanks) Wire(_ context.Context, bank ulid.ULID, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.banks[bank]
	if !ok {
		return 0, ErrNoAccount
	}
	m.accounts.mu.Lock()
	defer m.accounts.mu.Unlock()
	if _, err := m.accounts.debit(b.Owner, amount); err != nil {
		return b.Balance, err
	}
	b.Balance += amount
	return b.Balance, nil
}

// Banks implements BankRepository. Order is unspecified.
func (m *MemoryBanks) Banks(_ context.Context) ([]Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bank, 0, len(m.banks))
	for _, b := range m.banks {
		out = append(out, *b)
	}
	return out, nil
}
