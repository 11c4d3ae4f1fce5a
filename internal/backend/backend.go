// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package backend defines the DNS backend contract every provider adapter
// implements, plus a static, init()-time registry keyed by provider name so
// the composition root can select one without reflection.
package backend

import (
	"context"
	"time"

	"github.com/mikempw/failover/internal/lease"
)

// WriteRequest is the atomic A+TXT update a backend must apply together.
type WriteRequest struct {
	IP        string
	Owner     lease.Owner
	ExpiresAt time.Time
	TTL       time.Duration
}

// ReadResult is the current state of the A and TXT records. A or TXT is
// the empty string when the corresponding record does not exist.
type ReadResult struct {
	A   string
	TXT string
}

// Backend is implemented by every DNS provider adapter (route53,
// cloudflare, rfc2136, script). SetRecords must apply the A and TXT
// records as a single atomic change where the provider supports it;
// GetRecords must not cache beyond the call.
type Backend interface {
	SetRecords(ctx context.Context, req WriteRequest) error
	GetRecords(ctx context.Context) (ReadResult, error)
}

// Config carries every setting any adapter might need. Fields unused by a
// given provider are ignored.
type Config struct {
	Zone    string
	Record  string
	TTL     time.Duration
	Timeout time.Duration

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	DNSAPIToken string

	DNSServer   string
	TSIGKeyName string
	TSIGSecret  string

	ScriptWritePath string
	ScriptReadPath  string
}
