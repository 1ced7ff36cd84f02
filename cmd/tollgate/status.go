// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// statusTimeout bounds how long a health probe waits.
const statusTimeout = 5 * time.Second

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe a running host's health endpoints",
		Long:  `Probe the liveness and readiness endpoints of a running Tollgate host.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := &http.Client{Timeout: statusTimeout}

			for _, probe := range []string{"liveness", "readiness"} {
				url := fmt.Sprintf("http://%s/healthz/%s", metricsAddr, probe)
				req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
				if err != nil {
					return fmt.Errorf("build %s request: %w", probe, err)
				}
				resp, err := client.Do(req)
				if err != nil {
					cmd.Printf("%s: unreachable (%v)\n", probe, err)
					continue
				}
				_ = resp.Body.Close() //nolint:errcheck // status output only needs the code
				cmd.Printf("%s: %s\n", probe, resp.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address of the running host")

	return cmd
}
