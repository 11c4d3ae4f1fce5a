// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	intlclock "github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/config"
	"github.com/mikempw/failover/internal/coordinator"
	"github.com/mikempw/failover/internal/daemon"
	"github.com/mikempw/failover/internal/health"
	"github.com/mikempw/failover/internal/httpmw"
	"github.com/mikempw/failover/internal/log"
	"github.com/mikempw/failover/internal/telemetry"
	"github.com/mikempw/failover/internal/version"
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coordinator loop (also the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

func runDaemon(parentCtx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(parentCtx, telemetry.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    "failoverd",
		ServiceVersion: cfg.OTelServiceVersion,
		Environment:    cfg.OTelEnvironment,
		ExporterType:   cfg.OTelExporterType,
		Endpoint:       cfg.OTelEndpoint,
		SamplingRate:   cfg.OTelSamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	b, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	var oracle health.Oracle
	if cfg.Role == config.RoleDR {
		oracle = buildOracle(cfg)
	}

	self := selfOwner(cfg)
	coord := coordinator.New(coordinator.Options{
		Role:    self,
		Self:    self,
		SelfIP:  cfg.SelfIP,
		Backend: b,
		Oracle:  oracle,
		Clock:   intlclock.WallClock,
		Cfg: coordinator.Thresholds{
			FailThreshold:  cfg.FailThreshold,
			LeaseTTL:       cfg.LeaseTTL,
			UpdateInterval: cfg.UpdateInterval,
			DNSTTL:         cfg.DNSTTL,
		},
		Logger: log.WithComponent("coordinator"),
	})

	healthMgr := health.NewManager(version.Version)
	healthMgr.RegisterChecker(health.NewBackendChecker(func(ctx context.Context) error {
		_, err := b.GetRecords(ctx)
		return err
	}))
	healthMgr.RegisterChecker(health.NewLoopLivenessChecker(coord.LastIteration, cfg.UpdateInterval*3))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthMgr.ServeHealth)
	mux.HandleFunc("/readyz", healthMgr.ServeReady)
	mux.HandleFunc("/v1/lease", func(w http.ResponseWriter, r *http.Request) {
		serveLease(w, r, b, cfg.DNSRecord)
	})

	var handler http.Handler = mux
	handler = log.Middleware()(handler)
	handler = httpmw.RateLimit(httpmw.RateLimitConfig{
		RequestLimit: cfg.RateLimitRequests,
		WindowSize:   cfg.RateLimitWindow,
	})(handler)
	handler = httpmw.OTelHTTP("failoverd")(handler)

	app, err := daemon.New(log.Base(), coord, 15*time.Second,
		daemon.Endpoint{Name: "introspection", Addr: cfg.ListenAddr, Handler: handler},
		daemon.Endpoint{Name: "metrics", Addr: cfg.MetricsAddr, Handler: promhttp.Handler()},
	)
	if err != nil {
		return fmt.Errorf("assemble daemon: %w", err)
	}
	app.OnShutdown("telemetry", tp.Shutdown)

	ctx, cancel := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return app.Run(ctx)
}
