// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tollgate/tollgate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var steps int
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run ledger schema migrations",
		Long:  `Apply the ledger schema migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := os.Getenv("DATABASE_URL")
			if url == "" {
				cfg, err := LoadConfig(configFile, nil)
				if err != nil {
					return err
				}
				url = cfg.Database.URL
			}
			if url == "" {
				return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set DATABASE_URL or database.url)")
			}

			migrator, err := store.NewMigrator(url)
			if err != nil {
				return err
			}
			defer migrator.Close() //nolint:errcheck // close error is secondary to the migration outcome

			switch {
			case down:
				cmd.Println("Rolling back all migrations...")
				if err := migrator.Down(); err != nil {
					return err
				}
			case steps != 0:
				cmd.Printf("Applying %d migration step(s)...\n", steps)
				if err := migrator.Steps(steps); err != nil {
					return err
				}
			default:
				cmd.Println("Applying pending migrations...")
				if err := migrator.Up(); err != nil {
					return err
				}
			}

			version, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			cmd.Printf("Schema at version %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "apply exactly n steps (negative rolls back)")
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations (destructive)")

	return cmd
}
