// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package httpmw provides the middleware the daemon wraps its
// introspection surface (/healthz, /readyz, /v1/lease) in: per-request
// tracing and per-client rate limiting, on top of internal/log's request
// logger.
package httpmw

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OTelHTTP starts one span per request so log.WithTraceContext can stamp
// trace_id/span_id onto the request log line. The probe endpoints are
// excluded: /healthz and /readyz are hit every few seconds by
// orchestrators and would otherwise be nearly all of the trace volume.
func OTelHTTP(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != "/readyz"
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
