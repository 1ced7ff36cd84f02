// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tollgate/tollgate/internal/economy"
	"github.com/tollgate/tollgate/internal/economy/postgres"
	"github.com/tollgate/tollgate/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, applies the
// ledger migrations, and returns a connected pool.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tollgate_test"),
		tcpostgres.WithUsername("tollgate"),
		tcpostgres.WithPassword("tollgate"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr, 30*time.Second)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("Ledger repositories", func() {
	var pool *pgxpool.Pool
	var cleanup func()
	var accounts *postgres.AccountRepository
	var banks *postgres.BankRepository
	ctx := context.Background()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		accounts = postgres.NewAccountRepository(pool)
		banks = postgres.NewBankRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("AccountRepository", func() {
		It("creates accounts idempotently with a zero balance", func() {
			actor := ulid.Make()

			created, err := accounts.Create(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			created, err = accounts.Create(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())

			bal, err := accounts.Balance(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(BeZero())
		})

		It("deposits and withdraws", func() {
			actor := ulid.Make()
			_, err := accounts.Create(ctx, actor)
			Expect(err).NotTo(HaveOccurred())

			bal, err := accounts.Deposit(ctx, actor, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(Equal(100.0))

			bal, err = accounts.Withdraw(ctx, actor, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(Equal(40.0))
		})

		It("refuses overdraw without moving the balance", func() {
			actor := ulid.Make()
			_, err := accounts.Create(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			_, err = accounts.Deposit(ctx, actor, 40)
			Expect(err).NotTo(HaveOccurred())

			bal, err := accounts.Withdraw(ctx, actor, 60)
			Expect(err).To(MatchError(economy.ErrInsufficientFunds))
			Expect(bal).To(Equal(40.0))

			bal, err = accounts.Balance(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(Equal(40.0))
		})

		It("distinguishes a missing account from insufficient funds", func() {
			_, err := accounts.Withdraw(ctx, ulid.Make(), 10)
			Expect(err).To(MatchError(economy.ErrNoAccount))
		})
	})

	Describe("BankRepository", func() {
		It("enforces one bank per owner", func() {
			owner := ulid.Make()

			_, err := banks.CreateBank(ctx, owner, "ironbank")
			Expect(err).NotTo(HaveOccurred())

			_, err = banks.CreateBank(ctx, owner, "second")
			Expect(err).To(HaveOccurred())
		})

		It("wires atomically from owner account to bank pool", func() {
			owner := ulid.Make()
			_, err := accounts.Create(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			_, err = accounts.Deposit(ctx, owner, 100)
			Expect(err).NotTo(HaveOccurred())

			bank, err := banks.CreateBank(ctx, owner, "ironbank")
			Expect(err).NotTo(HaveOccurred())

			pool, err := banks.Wire(ctx, bank.ID, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool).To(Equal(60.0))

			bal, err := accounts.Balance(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(Equal(40.0))
		})

		It("leaves both sides untouched when the wire is refused", func() {
			owner := ulid.Make()
			_, err := accounts.Create(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			_, err = accounts.Deposit(ctx, owner, 40)
			Expect(err).NotTo(HaveOccurred())

			bank, err := banks.CreateBank(ctx, owner, "ironbank")
			Expect(err).NotTo(HaveOccurred())

			_, err = banks.Wire(ctx, bank.ID, 60)
			Expect(err).To(MatchError(economy.ErrInsufficientFunds))

			bankBal, err := banks.BankBalance(ctx, bank.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(bankBal).To(BeZero(), "refused wire must not credit the pool")

			bal, err := accounts.Balance(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(bal).To(Equal(40.0), "refused wire must not debit the owner")
		})

		It("rolls back a wire whose owner account is missing", func() {
			owner := ulid.Make()
			bank, err := banks.CreateBank(ctx, owner, "orphan")
			Expect(err).NotTo(HaveOccurred())

			_, err = banks.Wire(ctx, bank.ID, 60)
			Expect(err).To(MatchError(economy.ErrNoAccount))

			bankBal, err := banks.BankBalance(ctx, bank.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(bankBal).To(BeZero(), "refused wire must not credit the pool")
		})

		It("lists banks", func() {
			_, err := banks.CreateBank(ctx, ulid.Make(), "first")
			Expect(err).NotTo(HaveOccurred())
			_, err = banks.CreateBank(ctx, ulid.Make(), "second")
			Expect(err).NotTo(HaveOccurred())

			all, err := banks.Banks(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})
})
