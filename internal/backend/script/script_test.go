// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/backend/script"
	"github.com/mikempw/failover/internal/lease"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestScriptBackend_SetAndGetRecords(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "state.json")

	writePath := writeScript(t, dir, "write.sh", `
echo "{\"A\":\"$1\",\"TXT\":\"owner=$2 exp=$3\"}" > `+stateFile+`
`)
	readPath := writeScript(t, dir, "read.sh", `
cat `+stateFile+`
`)

	b, err := script.New(backend.Config{ScriptWritePath: writePath, ScriptReadPath: readPath})
	require.NoError(t, err)

	ctx := context.Background()
	err = b.SetRecords(ctx, backend.WriteRequest{
		IP:        "10.0.0.5",
		Owner:     lease.OwnerDR,
		ExpiresAt: time.Unix(1_700_000_060, 0),
		TTL:       30 * time.Second,
	})
	require.NoError(t, err)

	result, err := b.GetRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", result.A)
	assert.Equal(t, "owner=dr exp=1700000060", result.TXT)
}

func TestScriptBackend_MissingPaths(t *testing.T) {
	_, err := script.New(backend.Config{})
	require.Error(t, err)
}

func TestScriptBackend_WriteProgramFails(t *testing.T) {
	dir := t.TempDir()
	writePath := writeScript(t, dir, "write.sh", "exit 1\n")
	readPath := writeScript(t, dir, "read.sh", "echo '{}'\n")

	b, err := script.New(backend.Config{ScriptWritePath: writePath, ScriptReadPath: readPath})
	require.NoError(t, err)

	err = b.SetRecords(context.Background(), backend.WriteRequest{IP: "10.0.0.1", Owner: lease.OwnerPrimary, TTL: time.Second})
	require.Error(t, err)
}
