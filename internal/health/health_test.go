// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name   string
	result CheckResult
}

func (c stubChecker) Name() string                      { return c.name }
func (c stubChecker) Check(context.Context) CheckResult { return c.result }

func TestReady_NoCheckers(t *testing.T) {
	m := NewManager("v1")
	body := m.Ready(context.Background())
	assert.True(t, body.Ready)
	assert.Equal(t, StatusHealthy, body.Status)
}

func TestReady_AggregatesWorstStatus(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(stubChecker{name: "ok", result: CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(stubChecker{name: "warn", result: CheckResult{Status: StatusDegraded, Message: "last iteration errored"}})

	body := m.Ready(context.Background())
	assert.True(t, body.Ready, "degraded must not flip readiness")
	assert.Equal(t, StatusDegraded, body.Status)
	assert.Len(t, body.Checks, 2)
}

func TestReady_UnhealthyCheckerMakesNotReady(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(stubChecker{name: "ok", result: CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(stubChecker{name: "bad", result: CheckResult{Status: StatusUnhealthy, Error: "dns backend unreachable"}})

	body := m.Ready(context.Background())
	assert.False(t, body.Ready)
	assert.Equal(t, StatusUnhealthy, body.Status)
}

func TestServeHealth_Always200(t *testing.T) {
	m := NewManager("v1.2.3")
	// Even an unhealthy checker must not affect liveness.
	m.RegisterChecker(stubChecker{name: "bad", result: CheckResult{Status: StatusUnhealthy}})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(stubChecker{name: "ok", result: CheckResult{Status: StatusHealthy}})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	m.RegisterChecker(stubChecker{name: "bad", result: CheckResult{Status: StatusUnhealthy}})
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body Readiness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Contains(t, body.Checks, "bad")
}

func TestBackendChecker(t *testing.T) {
	ok := NewBackendChecker(func(context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	bad := NewBackendChecker(func(context.Context) error { return errors.New("dial timeout") })
	res := bad.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "dial timeout", res.Error)
}

func TestLoopLivenessChecker(t *testing.T) {
	t.Run("never iterated", func(t *testing.T) {
		c := NewLoopLivenessChecker(func() (time.Time, error) { return time.Time{}, nil }, time.Minute)
		assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
	})

	t.Run("recent iteration", func(t *testing.T) {
		c := NewLoopLivenessChecker(func() (time.Time, error) { return time.Now(), nil }, time.Minute)
		assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)
	})

	t.Run("stale iteration", func(t *testing.T) {
		c := NewLoopLivenessChecker(func() (time.Time, error) { return time.Now().Add(-2 * time.Minute), nil }, time.Minute)
		assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
	})

	t.Run("recent iteration with error", func(t *testing.T) {
		c := NewLoopLivenessChecker(func() (time.Time, error) { return time.Now(), errors.New("write failed") }, time.Minute)
		res := c.Check(context.Background())
		assert.Equal(t, StatusDegraded, res.Status)
		assert.Equal(t, "write failed", res.Error)
	})
}
