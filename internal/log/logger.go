// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package log owns the process-wide zerolog logger. Configure is called
// once from the CLI entrypoint; everything else hands out component-tagged
// children of that root so every line carries service, version and
// component fields.
package log

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Config is what Configure needs to build the root logger.
type Config struct {
	Level   string    // zerolog level name; unparseable or empty means info
	Output  io.Writer // defaults to os.Stdout
	Service string    // service field on every line
	Version string    // version field on every line
}

var (
	rootMu sync.RWMutex
	root   zerolog.Logger
	ready  bool
)

// Configure builds the root logger and sets the global level. Calling it
// again replaces the root, which tests use to capture output.
func Configure(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	builder := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		builder = builder.Str("service", cfg.Service)
	}
	if cfg.Version != "" {
		builder = builder.Str("version", cfg.Version)
	}

	rootMu.Lock()
	root = builder.Logger()
	ready = true
	rootMu.Unlock()
}

// Base returns the root logger, configuring a default one if the
// entrypoint hasn't run Configure yet (some tests construct components
// directly).
func Base() zerolog.Logger {
	rootMu.RLock()
	if ready {
		defer rootMu.RUnlock()
		return root
	}
	rootMu.RUnlock()

	Configure(Config{Service: "failoverd"})
	return Base()
}

// WithComponent returns a child of the root tagged component=name. The
// coordinator, watcher and config packages log through one of these.
func WithComponent(name string) zerolog.Logger {
	return Base().With().Str("component", name).Logger()
}

// WithTraceContext returns logger enriched with trace_id and span_id from
// ctx's active span, if any. The coordinator and watcher loops call this
// on every iteration (each iteration runs inside its own span, see
// internal/telemetry), and Middleware calls it per request, so the
// decision loop and the HTTP surface share correlation fields when
// tracing is enabled. Under the default noop tracer provider the span is
// never valid and the fields are simply omitted.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With().
		Str("trace_id", span.SpanContext().TraceID().String()).
		Str("span_id", span.SpanContext().SpanID().String()).
		Logger()
}

// Middleware logs one line per request on the introspection surface and
// tags the request context with a request ID. An inbound X-Request-ID is
// trusted and echoed so a probe fleet or reverse proxy can correlate;
// otherwise one is generated. httpmw.OTelHTTP must wrap outside this
// middleware for the trace fields to be present.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := WithRequestID(r.Context(), id)
			reqLogger := WithTraceContext(ctx, Base()).With().
				Str("request_id", id).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Logger()
			ctx = reqLogger.WithContext(ctx)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info().
				Str("event", "request.handled").
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
