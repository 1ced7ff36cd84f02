// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tollgate/tollgate/internal/economy"
	"github.com/tollgate/tollgate/pkg/errutil"
)

func newBankFixture(t *testing.T) (*economy.BankService, *economy.LedgerService) {
	t.Helper()
	accounts := economy.NewMemoryAccounts()
	format := economy.NewCurrencyFormatter(language.English, "coin", "coins", 2)
	ledger := economy.NewLedgerService("memory", accounts, format, nil)
	t.Cleanup(ledger.Close)
	banks := economy.NewBankService("memory", economy.NewMemoryBanks(accounts), ledger, nil)
	return banks, ledger
}

func openBank(t *testing.T, banks *economy.BankService, owner ulid.ULID) economy.Bank {
	t.Helper()
	ctx := context.Background()
	res := mustResult(t, banks.CreateBank(ctx, owner, "ironbank"))
	require.Equal(t, economy.TxSuccess, res.Status)
	bank, err := banks.OwnerBank(ctx, owner).Await(ctx)
	require.NoError(t, err)
	return bank
}

func TestBankService_CreateAndLookup(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()
	owner := ulid.Make()

	bank := openBank(t, banks, owner)
	assert.Equal(t, owner, bank.Owner)
	assert.Equal(t, "ironbank", bank.Name)
	assert.Zero(t, bank.Balance, "new banks start empty")

	// One bank per owner.
	res := mustResult(t, banks.CreateBank(ctx, owner, "second"))
	assert.Equal(t, economy.TxFailure, res.Status)
}

func TestBankService_CreateRejectsEmptyName(t *testing.T) {
	banks, _ := newBankFixture(t)

	_, err := banks.CreateBank(context.Background(), ulid.Make(), "").Await(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}

func TestBankService_OwnerBankMissing(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()

	_, err := banks.OwnerBank(ctx, ulid.Make()).Await(ctx)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "NOT_FOUND")
}

func TestBankService_DepositWithdraw(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()
	bank := openBank(t, banks, ulid.Make())

	res := mustResult(t, banks.BankDeposit(ctx, bank.ID, 200))
	assert.Equal(t, economy.TxSuccess, res.Status)
	assert.InDelta(t, 200.0, res.Balance, 1e-9)

	res = mustResult(t, banks.BankWithdraw(ctx, bank.ID, 150))
	assert.Equal(t, economy.TxSuccess, res.Status)
	assert.InDelta(t, 50.0, res.Balance, 1e-9)

	res = mustResult(t, banks.BankWithdraw(ctx, bank.ID, 51))
	assert.Equal(t, economy.TxInsufficientFunds, res.Status)

	bal, err := banks.BankBalance(ctx, bank.ID).Await(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, bal, 1e-9)
}

func TestBankService_Wire(t *testing.T) {
	banks, ledger := newBankFixture(t)
	ctx := context.Background()
	owner := ulid.Make()
	_, err := ledger.CreateAccount(ctx, owner).Await(ctx)
	require.NoError(t, err)
	mustResult(t, ledger.Credit(ctx, owner, 100))
	bank := openBank(t, banks, owner)

	res := mustResult(t, banks.BankWire(ctx, bank.ID, 50))
	assert.Equal(t, economy.TxSuccess, res.Status)
	assert.InDelta(t, 50.0, res.Balance, 1e-9, "wire reports the pool after the credit")

	bal, err := ledger.Balance(ctx, owner).Await(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, bal, 1e-9, "the owner's personal account funds the wire")

	poolBal, err := banks.BankBalance(ctx, bank.ID).Await(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, poolBal, 1e-9)
}

func TestBankService_WireInsufficientLeavesBothSides(t *testing.T) {
	banks, ledger := newBankFixture(t)
	ctx := context.Background()
	owner := ulid.Make()
	_, err := ledger.CreateAccount(ctx, owner).Await(ctx)
	require.NoError(t, err)
	mustResult(t, ledger.Credit(ctx, owner, 40))
	bank := openBank(t, banks, owner)

	res := mustResult(t, banks.BankWire(ctx, bank.ID, 50))
	assert.Equal(t, economy.TxInsufficientFunds, res.Status)

	acctBal, err := ledger.Balance(ctx, owner).Await(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, acctBal, 1e-9, "a refused wire must not debit the owner")

	bankBal, err := banks.BankBalance(ctx, bank.ID).Await(ctx)
	require.NoError(t, err)
	assert.Zero(t, bankBal, "a refused wire must not credit the pool")
}

func TestBankService_WireMissingOwnerAccount(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()
	bank := openBank(t, banks, ulid.Make())

	res := mustResult(t, banks.BankWire(ctx, bank.ID, 10))
	assert.Equal(t, economy.TxNoAccount, res.Status)

	bankBal, err := banks.BankBalance(ctx, bank.ID).Await(ctx)
	require.NoError(t, err)
	assert.Zero(t, bankBal)
}

func TestBankService_Banks(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()

	all, err := banks.Banks(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	openBank(t, banks, ulid.Make())
	openBank(t, banks, ulid.Make())

	all, err = banks.Banks(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBankHasEnough(t *testing.T) {
	banks, _ := newBankFixture(t)
	ctx := context.Background()

	// Unknown bank: not enough, never an error.
	ok, err := economy.BankHasEnough(ctx, banks, ulid.Make(), 1).Await(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	bank := openBank(t, banks, ulid.Make())
	mustResult(t, banks.BankDeposit(ctx, bank.ID, 25))

	ok, err = economy.BankHasEnough(ctx, banks, bank.ID, 25).Await(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = economy.BankHasEnough(ctx, banks, bank.ID, 26).Await(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
