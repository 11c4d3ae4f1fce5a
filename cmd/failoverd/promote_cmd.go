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
	rootCmd.AddCommand(promoteCmd)
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Force this DR site to become the active owner",
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
		if err := coordinator.Promote(cmd.Context(), b, cfg.DRIP, cfg.LeaseTTL, now); err != nil {
			return err
		}
		fmt.Println("promoted to active")
		return nil
	},
}
