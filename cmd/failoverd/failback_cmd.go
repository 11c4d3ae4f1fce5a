// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/coordinator"
)

func init() {
	rootCmd.AddCommand(failbackCmd)
}

var failbackCmd = &cobra.Command{
	Use:   "failback",
	Short: "Force the primary site back to active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := buildBackend(cfg)
		if err != nil {
			return err
		}

		now := clock.WallClock.Now()
		if err := coordinator.Failback(cmd.Context(), b, cfg.PrimaryIP, cfg.LeaseTTL, now); err != nil {
			return err
		}
		fmt.Println("failed back to primary")
		return nil
	},
}
