// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/errs"
	"github.com/mikempw/failover/internal/lease"
)

// Init writes the initial lease for self. Unless force is set, it refuses
// to overwrite a lease the peer already holds validly.
func Init(ctx context.Context, b backend.Backend, self lease.Owner, selfIP string, ttl time.Duration, now time.Time, force bool) error {
	if !force {
		result, err := b.GetRecords(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrBackendRead, err)
		}
		if result.TXT != "" {
			if l, perr := lease.Parse(result.TXT); perr == nil && l.Owner != self && l.Valid(now) {
				return fmt.Errorf("%w: lease is held by %q until %s", errs.ErrPrecondition, l.Owner, l.ExpiresAt.UTC())
			}
		}
	}

	if err := b.SetRecords(ctx, backend.WriteRequest{IP: selfIP, Owner: self, ExpiresAt: now.Add(ttl), TTL: ttl}); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendWrite, err)
	}
	return nil
}

// Promote forces the named site to become the active owner, regardless of
// the lease's current holder. It is the operator's manual escape hatch
// when automatic DR takeover hasn't (yet) triggered.
func Promote(ctx context.Context, b backend.Backend, ip string, ttl time.Duration, now time.Time) error {
	if err := b.SetRecords(ctx, backend.WriteRequest{IP: ip, Owner: lease.OwnerDR, ExpiresAt: now.Add(ttl), TTL: ttl}); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendWrite, err)
	}
	return nil
}

// Failback forces the primary site back to active. The DR coordinator, if
// running, will observe the change within one UpdateInterval and revert
// to standby on its own (see DecideDR's Active branch).
func Failback(ctx context.Context, b backend.Backend, ip string, ttl time.Duration, now time.Time) error {
	if err := b.SetRecords(ctx, backend.WriteRequest{IP: ip, Owner: lease.OwnerPrimary, ExpiresAt: now.Add(ttl), TTL: ttl}); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendWrite, err)
	}
	return nil
}

// ShowResult is the JSON shape printed by `failoverd show` and served at
// GET /v1/lease.
type ShowResult struct {
	Record               string `json:"record"`
	A                    string `json:"a,omitempty"`
	Owner                string `json:"owner"`
	ExpiresAt            int64  `json:"expires_at,omitempty"`
	TimeRemainingSeconds int64  `json:"time_remaining_seconds,omitempty"`
	Malformed            bool   `json:"malformed,omitempty"`
}

// Show reads the current record pair and reports it without judging
// validity beyond parsing: a malformed or absent TXT shows Owner
// "UNKNOWN" rather than erroring, since that reflects the coordinator's
// own fail-safe treatment of such leases.
func Show(ctx context.Context, b backend.Backend, record string, now time.Time) ShowResult {
	res := ShowResult{Record: record, Owner: "UNKNOWN"}

	result, err := b.GetRecords(ctx)
	if err != nil {
		return res
	}
	res.A = result.A

	if result.TXT == "" {
		return res
	}
	l, perr := lease.Parse(result.TXT)
	if perr != nil {
		res.Malformed = true
		return res
	}

	res.Owner = string(l.Owner)
	res.ExpiresAt = l.ExpiresAt.Unix()
	res.TimeRemainingSeconds = int64(l.ExpiresAt.Sub(now).Seconds())
	return res
}
