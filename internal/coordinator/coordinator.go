// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/clock"
	"github.com/mikempw/failover/internal/health"
	"github.com/mikempw/failover/internal/lease"
	"github.com/mikempw/failover/internal/log"
	"github.com/mikempw/failover/internal/metrics"
	"github.com/mikempw/failover/internal/telemetry"
)

// Options configures a Coordinator.
type Options struct {
	Role    lease.Owner // OwnerPrimary or OwnerDR
	Self    lease.Owner
	SelfIP  string
	Backend backend.Backend
	Oracle  health.Oracle // required for Role == OwnerDR; unused for primary
	Clock   clock.Clock
	Cfg     Thresholds
	Logger  zerolog.Logger
}

// Coordinator drives the per-site poll-decide-act loop: exactly one
// instance runs per process, satisfying daemon.Loop.
type Coordinator struct {
	opts Options

	mu            sync.Mutex
	state         DecisionState
	lastIteration time.Time
	haveIterated  bool
	lastErr       error
}

// New builds a Coordinator ready to Run.
func New(opts Options) *Coordinator {
	return &Coordinator{opts: opts}
}

// Run blocks, iterating every UpdateInterval until ctx is cancelled. The
// first iteration fires immediately.
func (c *Coordinator) Run(ctx context.Context) error {
	timer := c.opts.Clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.Chan():
		}

		c.iterate(ctx)
		timer.Reset(c.opts.Cfg.UpdateInterval)
	}
}

// LastIteration reports when the loop last completed an iteration, for
// health.LoopLivenessChecker. It returns an error before the first
// iteration has run.
func (c *Coordinator) LastIteration() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveIterated {
		return time.Time{}, errors.New("coordinator has not completed an iteration yet")
	}
	return c.lastIteration, c.lastErr
}

func (c *Coordinator) currentState() DecisionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s DecisionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Coordinator) iterate(ctx context.Context) {
	ctx, span := telemetry.Tracer("coordinator").Start(ctx, "coordinator.iterate")
	defer span.End()
	logger := log.WithTraceContext(ctx, c.opts.Logger)

	now := c.opts.Clock.Now()
	var action Action
	var next DecisionState
	var iterErr error

	if c.opts.Role == lease.OwnerPrimary {
		next, action = DecidePrimary(c.currentState())
	} else {
		verdict := c.opts.Oracle.Check(ctx)
		metrics.HealthVerdictsTotal.WithLabelValues(string(verdict)).Inc()

		observed, readErr := c.readLease(ctx, logger)
		next, action = DecideDR(c.currentState(), verdict, observed, readErr, c.opts.Self, now, c.opts.Cfg)
		metrics.FailureStreak.Set(float64(next.FailureStreak))
		if observed != nil {
			renewedAt := observed.ExpiresAt.Add(-c.opts.Cfg.LeaseTTL)
			metrics.LeaseAgeSeconds.Set(now.Sub(renewedAt).Seconds())
		}
	}

	switch action {
	case ActionRenewSelf, ActionTakeover:
		start := c.opts.Clock.Now()
		err := c.opts.Backend.SetRecords(ctx, backend.WriteRequest{
			IP:        c.opts.SelfIP,
			Owner:     c.opts.Self,
			ExpiresAt: now.Add(c.opts.Cfg.LeaseTTL),
			TTL:       c.opts.Cfg.DNSTTL,
		})
		metrics.ObserveBackendWrite(c.opts.Clock.Now().Sub(start))
		if err != nil {
			iterErr = err
			logger.Error().Err(err).Str("event", "coordinator.write_failed").Msg("failed to write lease")
			if action == ActionTakeover {
				// The takeover only takes effect once the write lands; the
				// next iteration re-runs the full decision procedure.
				next.Active = false
			}
		} else if action == ActionTakeover {
			metrics.TakeoversTotal.Inc()
			logger.Warn().Str("event", "coordinator.takeover").Str("owner", string(c.opts.Self)).Msg("taking over as active site")
		}
	case ActionRevertToStandby:
		logger.Info().Str("event", "coordinator.failback_observed").Msg("observed lease owner change, reverting to standby")
	}

	c.mu.Lock()
	c.state = next
	c.lastIteration = now
	c.haveIterated = true
	c.lastErr = iterErr
	c.mu.Unlock()
}

// readLease fetches the current lease, returning a nil lease (not an
// error) when the TXT record is absent or malformed, since both cases are
// treated as "no valid lease" by DecideDR.
func (c *Coordinator) readLease(ctx context.Context, logger zerolog.Logger) (*lease.Lease, error) {
	result, err := c.opts.Backend.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	if result.TXT == "" {
		return nil, nil
	}
	l, parseErr := lease.Parse(result.TXT)
	if parseErr != nil {
		logger.Warn().Err(parseErr).Str("event", "coordinator.lease_malformed").Str("txt", result.TXT).Msg("treating malformed lease as absent")
		return nil, nil
	}
	return &l, nil
}
