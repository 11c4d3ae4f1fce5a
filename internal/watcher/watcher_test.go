// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package watcher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/watcher"
)

// TestMain guards against a Run loop that fails to exit on context
// cancellation leaking its goroutine past the end of the test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeResolver struct {
	mu sync.Mutex
	ip string
}

func (r *fakeResolver) set(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ip = ip
}

func (r *fakeResolver) Resolve(context.Context, string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ip, nil
}

type fakeController struct {
	mu      sync.Mutex
	running bool
	calls   int
}

func (c *fakeController) EnsureRunning(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.calls++
	return nil
}

func (c *fakeController) EnsureStopped(context.Context, time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.calls++
	return nil
}

func (c *fakeController) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *fakeController) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestWatcher_StartsWorkerWhenDNSPointsHere(t *testing.T) {
	fc := clock.NewFakeClock(time.Unix(1_700_000_000, 0))
	resolver := &fakeResolver{ip: "10.0.0.1"}
	ctrl := &fakeController{}

	w := watcher.New(watcher.Options{
		FQDN: "collector.example.com", MyIP: "10.0.0.1",
		Resolver: resolver, Controller: ctrl, Clock: fc,
		Interval: 5 * time.Second, Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForCalls(t, ctrl, 1)
	cancel()
	require.NoError(t, <-done)

	assert.True(t, ctrl.isRunning())
}

func TestWatcher_StopsWorkerWhenDNSPointsElsewhere(t *testing.T) {
	fc := clock.NewFakeClock(time.Unix(1_700_000_000, 0))
	resolver := &fakeResolver{ip: "10.0.0.2"}
	ctrl := &fakeController{running: true}

	w := watcher.New(watcher.Options{
		FQDN: "collector.example.com", MyIP: "10.0.0.1",
		Resolver: resolver, Controller: ctrl, Clock: fc,
		Interval: 5 * time.Second, GraceSeconds: 10, Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForCalls(t, ctrl, 1)
	cancel()
	require.NoError(t, <-done)

	assert.False(t, ctrl.isRunning())
}

func TestWatcher_FollowsAddressChangeAcrossPolls(t *testing.T) {
	fc := clock.NewFakeClock(time.Unix(1_700_000_000, 0))
	resolver := &fakeResolver{ip: "10.0.0.2"}
	ctrl := &fakeController{}

	w := watcher.New(watcher.Options{
		FQDN: "collector.example.com", MyIP: "10.0.0.1",
		Resolver: resolver, Controller: ctrl, Clock: fc,
		Interval: 5 * time.Second, Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForCalls(t, ctrl, 1)
	assert.False(t, ctrl.isRunning())

	resolver.set("10.0.0.1")
	require.NoError(t, fc.WaitAdvance(5*time.Second, time.Second, 1))
	waitForCalls(t, ctrl, 2)
	assert.True(t, ctrl.isRunning())

	cancel()
	require.NoError(t, <-done)
}

func waitForCalls(t *testing.T, ctrl *fakeController, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ctrl.callCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("controller was not called the expected number of times")
}
