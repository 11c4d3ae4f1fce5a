// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package script implements the DNS backend contract by shelling out to a
// pair of operator-supplied programs: one that applies a write, one that
// reports current state as JSON on stdout.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mikempw/failover/internal/backend"
)

func init() {
	backend.Register("script", New)
}

// readTimeout bounds the wall-clock time a read program may run before
// its output is discarded and the call fails.
const readTimeout = 30 * time.Second

// Client invokes external programs for every read and write.
type Client struct {
	writeProgram string
	readProgram  string
}

// New builds a script Client. ScriptWritePath and ScriptReadPath must both
// be set.
func New(cfg backend.Config) (backend.Backend, error) {
	if cfg.ScriptWritePath == "" || cfg.ScriptReadPath == "" {
		return nil, fmt.Errorf("script backend requires both a write and a read program path")
	}
	return &Client{writeProgram: cfg.ScriptWritePath, readProgram: cfg.ScriptReadPath}, nil
}

// readPayload is the JSON shape the read program must print to stdout.
// A nil field means the corresponding record does not exist.
type readPayload struct {
	A   *string `json:"A"`
	TXT *string `json:"TXT"`
}

// SetRecords invokes the write program with the new record values as
// positional arguments and as environment variables, for scripts that
// prefer one form over the other.
func (c *Client) SetRecords(ctx context.Context, req backend.WriteRequest) error {
	args := []string{
		req.IP,
		string(req.Owner),
		fmt.Sprintf("%d", req.ExpiresAt.Unix()),
		fmt.Sprintf("%d", int(req.TTL.Seconds())),
	}

	cmd := exec.CommandContext(ctx, c.writeProgram, args...)
	cmd.Env = append(cmd.Environ(),
		fmt.Sprintf("DNS_A_VALUE=%s", req.IP),
		fmt.Sprintf("DNS_OWNER=%s", req.Owner),
		fmt.Sprintf("DNS_EXPIRES_AT=%d", req.ExpiresAt.Unix()),
		fmt.Sprintf("DNS_TTL=%d", int(req.TTL.Seconds())),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: write program exited %d", backend.ErrNetwork, exitErr.ExitCode())
		}
		return fmt.Errorf("run write program: %w", err)
	}
	return nil
}

// GetRecords runs the read program and parses its stdout as JSON, bounded
// by readTimeout even when the caller's context has no deadline; a shorter
// caller deadline still applies.
func (c *Client) GetRecords(ctx context.Context) (backend.ReadResult, error) {
	readCtx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	cmd := exec.CommandContext(readCtx, c.readProgram)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return backend.ReadResult{}, fmt.Errorf("%w: run read program: %v", backend.ErrNetwork, err)
	}

	var payload readPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return backend.ReadResult{}, fmt.Errorf("parse read program output: %w", err)
	}

	var result backend.ReadResult
	if payload.A != nil {
		result.A = *payload.A
	}
	if payload.TXT != nil {
		result.TXT = *payload.TXT
	}
	return result, nil
}
