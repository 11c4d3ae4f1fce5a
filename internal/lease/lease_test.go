// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package lease_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/internal/lease"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	l := lease.Lease{Owner: lease.OwnerPrimary, ExpiresAt: time.Unix(1_700_000_000, 0).UTC()}

	parsed, err := lease.Parse(l.Encode())
	require.NoError(t, err)
	assert.Equal(t, l.Owner, parsed.Owner)
	assert.Equal(t, l.ExpiresAt, parsed.ExpiresAt)
}

func TestParse_IgnoresUnknownTokens(t *testing.T) {
	parsed, err := lease.Parse("owner=dr checksum=abc123 exp=1700000000 note=failover")
	require.NoError(t, err)
	assert.Equal(t, lease.OwnerDR, parsed.Owner)
	assert.Equal(t, int64(1700000000), parsed.ExpiresAt.Unix())
}

func TestParse_DuplicateOwnerToken(t *testing.T) {
	_, err := lease.Parse("owner=primary owner=dr exp=1700000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestParse_DuplicateExpToken(t *testing.T) {
	_, err := lease.Parse("owner=primary exp=1700000000 exp=1700000060")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestParse_MissingOwner(t *testing.T) {
	_, err := lease.Parse("exp=1700000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestParse_MissingExp(t *testing.T) {
	_, err := lease.Parse("owner=primary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestParse_NonIntegerExp(t *testing.T) {
	_, err := lease.Parse("owner=primary exp=soon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestParse_Empty(t *testing.T) {
	_, err := lease.Parse("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lease.ErrMalformed))
}

func TestValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := lease.Lease{Owner: lease.OwnerPrimary, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, l.Valid(now))

	expired := lease.Lease{Owner: lease.OwnerPrimary, ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Valid(now))
}
