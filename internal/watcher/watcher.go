// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package watcher implements the passive-side loop that keeps a site's
// local worker process running only while DNS actually points at that
// site, so a standby DR site doesn't duplicate work a takeover hasn't yet
// granted it.
package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/log"
	"github.com/mikempw/failover/internal/metrics"
	"github.com/mikempw/failover/internal/telemetry"
)

// Resolver resolves the coordinating FQDN to its current A record value.
type Resolver interface {
	Resolve(ctx context.Context, fqdn string) (string, error)
}

// Controller starts and stops the local worker. Both methods must be
// idempotent: calling EnsureRunning when already running, or
// EnsureStopped when already stopped, is a no-op.
type Controller interface {
	EnsureRunning(ctx context.Context) error
	EnsureStopped(ctx context.Context, grace time.Duration) error
}

// Options configures a Watcher.
type Options struct {
	FQDN         string
	MyIP         string
	Resolver     Resolver
	Controller   Controller
	Clock        clock.Clock
	Interval     time.Duration
	GraceSeconds int
	Logger       zerolog.Logger
}

// Watcher polls DNS and mirrors the worker's running state to "does DNS
// currently point here". It satisfies daemon.Loop.
type Watcher struct {
	opts Options

	mu            sync.Mutex
	lastObserved  string
	lastIteration time.Time
	haveIterated  bool
}

// New builds a Watcher ready to Run.
func New(opts Options) *Watcher {
	return &Watcher{opts: opts}
}

// Run blocks, polling every Interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	timer := w.opts.Clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.Chan():
		}

		w.iterate(ctx)
		timer.Reset(w.opts.Interval)
	}
}

// LastIteration reports when the loop last completed an iteration, for
// health.LoopLivenessChecker. It returns an error before the first
// iteration has run.
func (w *Watcher) LastIteration() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.haveIterated {
		return time.Time{}, errors.New("watcher has not completed an iteration yet")
	}
	return w.lastIteration, nil
}

func (w *Watcher) iterate(ctx context.Context) {
	ctx, span := telemetry.Tracer("watcher").Start(ctx, "watcher.iterate")
	defer span.End()
	logger := log.WithTraceContext(ctx, w.opts.Logger)

	defer func() {
		w.mu.Lock()
		w.lastIteration = w.opts.Clock.Now()
		w.haveIterated = true
		w.mu.Unlock()
	}()

	ip, err := w.opts.Resolver.Resolve(ctx, w.opts.FQDN)
	if err != nil {
		logger.Warn().Err(err).Str("event", "watcher.resolve_failed").Msg("failed to resolve coordinating name, preserving current worker state")
		return
	}

	w.mu.Lock()
	changed := ip != w.lastObserved
	w.lastObserved = ip
	w.mu.Unlock()

	if changed {
		logger.Info().Str("event", "watcher.address_changed").Str("ip", ip).Msg("observed address change")
	}

	if ip == w.opts.MyIP {
		if err := w.opts.Controller.EnsureRunning(ctx); err != nil {
			logger.Error().Err(err).Str("event", "watcher.ensure_running_failed").Msg("failed to ensure worker running")
			return
		}
		metrics.WatcherActionsTotal.WithLabelValues("ensure_running").Inc()
		return
	}

	grace := time.Duration(w.opts.GraceSeconds) * time.Second
	if err := w.opts.Controller.EnsureStopped(ctx, grace); err != nil {
		logger.Error().Err(err).Str("event", "watcher.ensure_stopped_failed").Msg("failed to ensure worker stopped")
		return
	}
	metrics.WatcherActionsTotal.WithLabelValues("ensure_stopped").Inc()
}
