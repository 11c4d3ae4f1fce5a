// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment configuration without contacting the DNS backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("configuration OK: role=%s dns_provider=%s dns_record=%s\n", cfg.Role, cfg.DNSProvider, cfg.DNSRecord)
		return nil
	},
}
