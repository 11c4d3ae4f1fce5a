// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package daemon ties a single coordination loop to the process
// lifecycle. The HTTP listeners (introspection, and metrics on the
// coordinator) live exactly as long as the loop does: if either side
// fails, everything is torn down, and cleanup hooks run once both have
// stopped.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"
)

// Loop is the long-running decision loop the daemon drives: the
// coordinator's poll-decide-act cycle, or the watcher's passive-side
// standby loop. Exactly one runs per process.
type Loop interface {
	Run(ctx context.Context) error
}

// Endpoint is one HTTP listener served next to the loop.
type Endpoint struct {
	Name    string
	Addr    string
	Handler http.Handler
}

// ErrNoLoop is returned by New when no loop is given.
var ErrNoLoop = errors.New("daemon: a loop is required")

type hook struct {
	name string
	fn   func(context.Context) error
}

// App runs the loop and its endpoints as one unit.
type App struct {
	logger    zerolog.Logger
	loop      Loop
	endpoints []Endpoint
	grace     time.Duration

	mu    sync.Mutex
	hooks []hook
}

// New assembles an App. grace bounds both HTTP draining and the hook
// phase at shutdown. Endpoints with an empty Addr are skipped, so a
// listener whose address is configured empty is simply not started.
func New(logger zerolog.Logger, loop Loop, grace time.Duration, endpoints ...Endpoint) (*App, error) {
	if loop == nil {
		return nil, ErrNoLoop
	}

	app := &App{
		logger: logger.With().Str("component", "daemon").Logger(),
		loop:   loop,
		grace:  grace,
	}
	for _, ep := range endpoints {
		if ep.Addr == "" {
			continue
		}
		app.endpoints = append(app.endpoints, ep)
	}
	return app, nil
}

// OnShutdown registers fn to run after the loop and listeners have
// stopped. Hooks run in reverse registration order, so a dependency
// registered first is flushed last.
func (a *App) OnShutdown(name string, fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run blocks until ctx is cancelled or the loop or a listener fails,
// then drains the listeners and runs the shutdown hooks. The error is
// whatever stopped the daemon; a clean ctx cancellation returns nil.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, ep := range a.endpoints {
		srv := &http.Server{
			Addr:              ep.Addr,
			Handler:           ep.Handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		a.logger.Info().
			Str("event", "daemon.listen").
			Str("endpoint", ep.Name).
			Str("addr", ep.Addr).
			Msg("http listener starting")

		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			// Drain when the group's context ends, whatever ended it.
			<-ctx.Done()
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.grace)
			defer cancel()
			return srv.Shutdown(drainCtx)
		})
	}

	g.Go(func() error {
		return a.loop.Run(ctx)
	})

	err := g.Wait()
	a.runHooks()

	if err != nil {
		a.logger.Error().Err(err).Str("event", "daemon.stopped").Msg("daemon stopped with error")
	} else {
		a.logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
	}
	return err
}

func (a *App) runHooks() {
	a.mu.Lock()
	hooks := append([]hook(nil), a.hooks...)
	a.mu.Unlock()

	if len(hooks) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			a.logger.Error().Err(err).Str("event", "daemon.hook_failed").Str("hook", h.name).Msg("shutdown hook failed")
			continue
		}
		a.logger.Debug().Str("event", "daemon.hook_done").Str("hook", h.name).Msg("shutdown hook completed")
	}
}
