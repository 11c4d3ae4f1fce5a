// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package httpmw

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in WindowSize.
	RequestLimit int
	// WindowSize is the sliding window over which RequestLimit applies.
	WindowSize time.Duration
}

// RateLimit bounds request volume on the introspection surface, which is
// reachable from outside the process (unlike the coordination loop's own
// DNS/health traffic, which the DNS backend and health oracle already
// bound with their own timeouts). Uses a sliding-window counter keyed by
// client IP.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	limiter := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.WindowSize.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
	return limiter
}
