// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package coordinator implements the DR-site decision procedure as a pure
// function of role-local state, the current health verdict, and the
// current lease read, plus the loop that drives it against real time and
// the configured DNS backend.
package coordinator

import (
	"time"

	"github.com/mikempw/failover/internal/health"
	"github.com/mikempw/failover/internal/lease"
)

// Action is what the loop driver should do after a decision.
type Action int

const (
	// ActionNone means the site takes no action this iteration.
	ActionNone Action = iota
	// ActionRenewSelf means write a fresh lease naming self as owner,
	// extending the expiry. Used both by the primary's steady-state loop
	// and by a DR site that has already taken over.
	ActionRenewSelf
	// ActionTakeover means write a fresh lease naming self as owner for
	// the first time, transitioning DR_STANDBY -> DR_ACTIVE.
	ActionTakeover
	// ActionRevertToStandby means an operator-driven failback was
	// observed; transition DR_ACTIVE -> DR_STANDBY without writing.
	ActionRevertToStandby
)

// Thresholds bundles the tunables the decision procedure and loop driver
// consult every iteration.
type Thresholds struct {
	FailThreshold  int
	LeaseTTL       time.Duration
	UpdateInterval time.Duration
	DNSTTL         time.Duration
}

// DecisionState is the coordinator's in-memory, role-local state. It is
// never persisted: a process restart starts over at FailureStreak 0 and
// Active false, since the externalized lease (not this struct) is the
// durable source of truth for who is active.
type DecisionState struct {
	Active        bool
	FailureStreak int
}

// DecidePrimary is the trivial primary-role procedure: a healthy primary
// always renews its own lease every iteration, unconditionally. It exists
// so the loop driver can treat both roles uniformly.
func DecidePrimary(prev DecisionState) (DecisionState, Action) {
	return DecisionState{Active: true, FailureStreak: 0}, ActionRenewSelf
}

// DecideDR implements the DR-role decision procedure:
//
//  1. While acting as standby, a HEALTHY verdict resets the failure streak
//     and takes no action.
//  2. An UNHEALTHY or UNKNOWN verdict increments the failure streak.
//  3. Below FailThreshold, no action is taken yet (transient-failure
//     tolerance).
//  4. At or above FailThreshold, the current lease is consulted. A read
//     failure fails closed: no takeover is attempted on an uncertain read.
//  5. If the lease already names self as owner (a previous takeover that
//     crashed before role-local state caught up), the streak resets and
//     role-local state becomes Active without a redundant write.
//  6. If the lease names the peer and has not expired, standby holds.
//  7. Otherwise (lease absent, malformed, or expired) the DR site takes
//     over.
//
// Once Active, the DR site behaves like a renewing primary, but keeps
// reading the lease every iteration specifically to detect an
// operator-driven failback: if the lease is read successfully and now
// names a different, still-valid owner, the site reverts to standby
// without contest.
func DecideDR(prev DecisionState, verdict health.Verdict, observed *lease.Lease, readErr error, self lease.Owner, now time.Time, cfg Thresholds) (DecisionState, Action) {
	next := prev

	if prev.Active {
		if readErr == nil && observed != nil && observed.Owner != self && observed.Valid(now) {
			next.Active = false
			next.FailureStreak = 0
			return next, ActionRevertToStandby
		}
		return next, ActionRenewSelf
	}

	if verdict == health.VerdictHealthy {
		next.FailureStreak = 0
		return next, ActionNone
	}

	next.FailureStreak = prev.FailureStreak + 1
	if next.FailureStreak < cfg.FailThreshold {
		return next, ActionNone
	}

	if readErr != nil {
		return next, ActionNone
	}

	if observed != nil && observed.Owner == self {
		next.FailureStreak = 0
		next.Active = true
		return next, ActionNone
	}

	if observed != nil && observed.Valid(now) {
		return next, ActionNone
	}

	next.Active = true
	return next, ActionTakeover
}
