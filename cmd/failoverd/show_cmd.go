// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/coordinator"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current lease state as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := buildBackend(cfg)
		if err != nil {
			return err
		}

		result := coordinator.Show(cmd.Context(), b, cfg.DNSRecord, clock.WallClock.Now())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// serveLease backs GET /v1/lease, reusing the same Show logic as the CLI.
func serveLease(w http.ResponseWriter, r *http.Request, b backend.Backend, record string) {
	result := coordinator.Show(r.Context(), b, record, clock.WallClock.Now())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
