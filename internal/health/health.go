// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package health has two unrelated jobs that happen to share a name: the
// Oracle (oracle.go) probes the *other* site and feeds the takeover
// decision, while the Manager here backs this process's own /healthz and
// /readyz endpoints for container orchestrators.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/mikempw/failover/internal/log"
)

// Status grades a check outcome. Degraded keeps /readyz at 200: the
// daemon is still doing its job, but something (e.g. the last loop
// iteration's backend write) reported an error worth surfacing.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is one checker's verdict.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Checker is a named readiness probe. The coordinator registers two (DNS
// backend reachability and decision-loop liveness); the watcher registers
// only decision-loop liveness.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// checkTimeout bounds a single /readyz evaluation. It must stay below
// typical probe timeouts (kubelet defaults to 1s per probe but operators
// here are told to configure 3s+) so a hung DNS read turns into a 503
// rather than a probe timeout.
const checkTimeout = 2 * time.Second

// Manager runs the registered checkers on demand. With two checkers and
// a probe cadence measured in seconds there is nothing to cache or
// coalesce; every /readyz request evaluates fresh.
type Manager struct {
	version string
	started time.Time

	mu       sync.Mutex
	checkers []Checker
}

// NewManager returns a Manager reporting the given version.
func NewManager(version string) *Manager {
	return &Manager{version: version, started: time.Now()}
}

// RegisterChecker adds a readiness checker.
func (m *Manager) RegisterChecker(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

func (m *Manager) snapshot() []Checker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Checker(nil), m.checkers...)
}

type healthBody struct {
	Status        Status `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ServeHealth is the liveness endpoint: if this handler runs, the process
// is alive, so it always answers 200 without consulting the checkers.
// Loop-stuck detection belongs to readiness, where a restart decision can
// be made on it.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:        StatusHealthy,
		Version:       m.version,
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "health")
		logger.Error().Err(err).Str("event", "health.encode_failed").Msg("failed to encode health response")
	}
}

type Readiness struct {
	Ready  bool                   `json:"ready"`
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Ready evaluates every registered checker in order and aggregates: any
// unhealthy result makes the process not ready, degraded results are
// reported but don't flip readiness.
func (m *Manager) Ready(ctx context.Context) Readiness {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	body := Readiness{
		Ready:  true,
		Status: StatusHealthy,
		Checks: make(map[string]CheckResult),
	}

	for _, c := range m.snapshot() {
		res := c.Check(ctx)
		body.Checks[c.Name()] = res

		switch res.Status {
		case StatusUnhealthy:
			body.Ready = false
			body.Status = StatusUnhealthy
		case StatusDegraded:
			if body.Status == StatusHealthy {
				body.Status = StatusDegraded
			}
		}
	}

	return body
}

// ServeReady is the readiness endpoint: 200 while every checker passes,
// 503 as soon as one is unhealthy (backend unreachable, loop stuck).
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	body := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if body.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "health")
		logger.Error().Err(err).Str("event", "ready.encode_failed").Msg("failed to encode readiness response")
	}
}

// BackendChecker reports whether the configured DNS backend can be read.
// The daemon should not be considered ready to coordinate until it can
// see the current lease.
type BackendChecker struct {
	read func(context.Context) error
}

// NewBackendChecker wraps a backend read probe.
func NewBackendChecker(read func(context.Context) error) *BackendChecker {
	return &BackendChecker{read: read}
}

func (c *BackendChecker) Name() string { return "dns_backend" }

func (c *BackendChecker) Check(ctx context.Context) CheckResult {
	if err := c.read(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: "DNS backend unreachable", Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "DNS backend reachable"}
}

// LoopLivenessChecker reports whether the decision loop is still
// iterating. Age of the last completed iteration is the signal, not its
// outcome: a loop that runs and decides "unhealthy peer" is itself fine,
// and is reported degraded at worst when the iteration ended in an error.
type LoopLivenessChecker struct {
	lastIteration func() (time.Time, error)
	maxAge        time.Duration
}

// NewLoopLivenessChecker wraps a loop's LastIteration accessor. maxAge
// should be a small multiple of the loop interval.
func NewLoopLivenessChecker(lastIteration func() (time.Time, error), maxAge time.Duration) *LoopLivenessChecker {
	return &LoopLivenessChecker{lastIteration: lastIteration, maxAge: maxAge}
}

func (c *LoopLivenessChecker) Name() string { return "decision_loop" }

func (c *LoopLivenessChecker) Check(ctx context.Context) CheckResult {
	last, err := c.lastIteration()
	if last.IsZero() {
		return CheckResult{Status: StatusUnhealthy, Message: "no loop iteration has completed yet"}
	}

	if age := time.Since(last); age > c.maxAge {
		return CheckResult{Status: StatusUnhealthy, Message: "loop has not iterated recently", Error: age.String()}
	}

	if err != nil {
		return CheckResult{Status: StatusDegraded, Message: "last iteration reported an error", Error: err.Error()}
	}

	return CheckResult{Status: StatusHealthy, Message: "loop iterating"}
}
