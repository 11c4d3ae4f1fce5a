// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Command failoverd coordinates which of two sites is authoritative for a
// shared worker target, using a DNS A/TXT record pair as the externalized
// lease.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/internal/errs"
	"github.com/mikempw/failover/internal/log"
	"github.com/mikempw/failover/internal/version"

	_ "github.com/mikempw/failover/internal/backend/cloudflare"
	_ "github.com/mikempw/failover/internal/backend/rfc2136"
	_ "github.com/mikempw/failover/internal/backend/route53"
	_ "github.com/mikempw/failover/internal/backend/script"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:     "failoverd",
	Short:   "Active/passive DNS-lease coordination daemon",
	Long:    "failoverd coordinates which of two sites is authoritative for a shared collection target, using a DNS A/TXT record pair as the externalized lease.",
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		log.Configure(log.Config{Level: level, Service: "failoverd", Version: version.Version})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy in internal/errs to the CLI's exit
// code contract: 2 for configuration errors, 3 for DNS backend errors, 4
// for a refused precondition (e.g. `init` without --force against a
// validly-held peer lease).
func exitCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrConfig):
		return 2
	case errors.Is(err, errs.ErrBackendRead), errors.Is(err, errs.ErrBackendWrite):
		return 3
	case errors.Is(err, errs.ErrPrecondition):
		return 4
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
