// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/tollgate/tollgate/internal/chat"
	"github.com/tollgate/tollgate/internal/economy"
	economypg "github.com/tollgate/tollgate/internal/economy/postgres"
	"github.com/tollgate/tollgate/internal/identity"
	"github.com/tollgate/tollgate/internal/logging"
	"github.com/tollgate/tollgate/internal/observability"
	"github.com/tollgate/tollgate/internal/perms"
	"github.com/tollgate/tollgate/internal/provider"
	"github.com/tollgate/tollgate/internal/store"
)

// dbConnectWait bounds how long serve waits for the database on boot.
const dbConnectWait = 30 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the service host",
		Long: `Start the service host: register the bundled permission, chat,
and economy providers and expose metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("log.level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "json", "log format (json or text)")
	cmd.Flags().String("database.url", "", "PostgreSQL URL (empty = in-memory backend)")
	cmd.Flags().String("metrics.addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")

	return cmd
}

func runServe(ctx context.Context, cfg *Config) error {
	logging.SetDefault("tollgate", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Identity and transient attachments. Logging out tears down every
	// attachment the session accumulated.
	resolver := identity.NewStatic()
	attachments := perms.NewAttachmentStore()
	resolver.OnLogout(attachments.EndSession)

	permsSvc := perms.NewMemory("memory", resolver, attachments, logger)
	chatSvc := chat.NewMemory("memory", permsSvc)

	// Economy: postgres-backed when a database URL is configured,
	// in-memory otherwise.
	var accountRepo economy.AccountRepository
	var bankRepo economy.BankRepository
	ledgerName := "memory"
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database.URL, dbConnectWait)
		if err != nil {
			return err
		}
		defer pool.Close()
		accountRepo = economypg.NewAccountRepository(pool)
		bankRepo = economypg.NewBankRepository(pool)
		ledgerName = "postgres"
	} else {
		accounts := economy.NewMemoryAccounts()
		accountRepo = accounts
		bankRepo = economy.NewMemoryBanks(accounts)
	}

	tag, err := language.Parse(cfg.Currency.Locale)
	if err != nil {
		logger.Warn("unknown currency locale, falling back to English", "locale", cfg.Currency.Locale)
		tag = language.English
	}
	format := economy.NewCurrencyFormatter(tag, cfg.Currency.Singular, cfg.Currency.Plural, cfg.Currency.Digits)

	ledger := economy.NewLedgerService(ledgerName, accountRepo, format, logger)
	defer ledger.Close()
	banks := economy.NewBankService(ledgerName, bankRepo, ledger, logger)

	registry, err := provider.NewRegistry(cfg.APIVersion, logger)
	if err != nil {
		return err
	}
	bundled := []struct {
		name string
		kind provider.Kind
		svc  any
	}{
		{"memory", provider.KindPermissions, permsSvc},
		{"memory", provider.KindChat, chatSvc},
		{ledgerName, provider.KindLedger, ledger},
		{ledgerName, provider.KindBank, banks},
	}
	for _, b := range bundled {
		m := &provider.Manifest{
			Name:     b.name,
			Version:  "1.0.0",
			Kind:     b.kind,
			Priority: "lowest",
		}
		if err := registry.Register(m, b.svc); err != nil {
			return err
		}
	}

	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr, func() bool { return true })
		errCh, err := obs.Start()
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(shutdownCtx); err != nil {
				logger.Error("observability server shutdown failed", "error", err)
			}
		}()
		go func() {
			if err := <-errCh; err != nil {
				logger.Error("observability server failed", "error", err)
				stop()
			}
		}()
		logger.Info("observability server listening", "addr", obs.Addr())
	}

	logger.Info("tollgate ready",
		"ledger", ledgerName,
		"api_version", cfg.APIVersion)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
