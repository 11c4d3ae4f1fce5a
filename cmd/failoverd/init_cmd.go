// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/coordinator"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing valid lease held by the peer")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the initial lease for this site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := buildBackend(cfg)
		if err != nil {
			return err
		}

		self := selfOwner(cfg)
		now := clock.WallClock.Now()
		if err := coordinator.Init(cmd.Context(), b, self, cfg.SelfIP, cfg.LeaseTTL, now, initForce); err != nil {
			return err
		}
		fmt.Println("lease initialized")
		return nil
	},
}
