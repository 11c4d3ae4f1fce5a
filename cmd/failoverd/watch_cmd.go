// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	intlclock "github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/config"
	"github.com/mikempw/failover/internal/daemon"
	"github.com/mikempw/failover/internal/health"
	"github.com/mikempw/failover/internal/httpmw"
	"github.com/mikempw/failover/internal/log"
	"github.com/mikempw/failover/internal/telemetry"
	"github.com/mikempw/failover/internal/version"
	"github.com/mikempw/failover/internal/watcher"
	"github.com/mikempw/failover/internal/watcher/container"
	"github.com/mikempw/failover/internal/watcher/k8sscale"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the DR-site watcher loop (mirrors DNS-observed authority onto the local worker process)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context())
	},
}

// buildResolver selects the watcher's DNS resolution path: a direct
// query to DNS_SERVER (bypassing local caching) when configured, or the
// system resolver otherwise, per spec.md §4.4.
func buildResolver(cfg *config.Config) watcher.Resolver {
	if cfg.DNSServer == "" {
		return &watcher.SystemResolver{Resolver: net.DefaultResolver}
	}
	server := cfg.DNSServer
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &watcher.DirectResolver{Server: server, Client: &dns.Client{Net: "udp", Timeout: 5 * time.Second}}
}

func buildController(cfg *config.Config) (watcher.Controller, error) {
	switch cfg.WorkerControllerKind {
	case "k8s-scale":
		return k8sscale.New(cfg.K8sNamespace, cfg.K8sDeployment)
	default:
		return container.New(cfg.ContainerName)
	}
}

func runWatch(parentCtx context.Context) error {
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

	ctrl, err := buildController(cfg)
	if err != nil {
		return fmt.Errorf("build worker controller: %w", err)
	}

	w := watcher.New(watcher.Options{
		FQDN:         cfg.DNSRecord,
		MyIP:         cfg.MyIP,
		Resolver:     buildResolver(cfg),
		Controller:   ctrl,
		Clock:        intlclock.WallClock,
		Interval:     cfg.WatcherInterval,
		GraceSeconds: cfg.WatcherGraceSeconds,
		Logger:       log.WithComponent("watcher"),
	})

	healthMgr := health.NewManager(version.Version)
	healthMgr.RegisterChecker(health.NewLoopLivenessChecker(w.LastIteration, cfg.WatcherInterval*3))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthMgr.ServeHealth)
	mux.HandleFunc("/readyz", healthMgr.ServeReady)

	var handler http.Handler = mux
	handler = log.Middleware()(handler)
	handler = httpmw.RateLimit(httpmw.RateLimitConfig{
		RequestLimit: cfg.RateLimitRequests,
		WindowSize:   cfg.RateLimitWindow,
	})(handler)
	handler = httpmw.OTelHTTP("failoverd")(handler)

	app, err := daemon.New(log.Base(), w, 15*time.Second,
		daemon.Endpoint{Name: "introspection", Addr: cfg.ListenAddr, Handler: handler},
	)
	if err != nil {
		return fmt.Errorf("assemble daemon: %w", err)
	}
	app.OnShutdown("telemetry", tp.Shutdown)

	ctx, cancel := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return app.Run(ctx)
}
