// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_SetsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Service: "failoverd", Version: "1.2.3"})

	logger := Base()
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "failoverd", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "hello", entry["message"])
}

func TestWithComponent_TagsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	logger := WithComponent("coordinator")
	logger.Warn().Msg("taking over")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "coordinator", entry["component"])
}

func TestWithTraceContext_NoSpanIsNoop(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	l := WithTraceContext(context.Background(), WithComponent("coordinator"))
	l.Info().Msg("no span")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	_, hasTraceID := entry["trace_id"]
	assert.False(t, hasTraceID, "trace_id must not appear without a valid span")
}

func TestMiddleware_LogsRequestIDAndStatus(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/lease", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request.handled", entry["event"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}
