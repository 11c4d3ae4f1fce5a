// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stores id in ctx for handlers below the logging
// middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the request-scoped logger Middleware stored in ctx,
// falling back to the root when there isn't one (direct calls in tests,
// or code running outside a request).
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return *l
		}
	}
	return Base()
}

// WithComponentFromContext tags the request-scoped logger with a
// component name, so handler packages get the request_id/trace fields
// without threading loggers through their APIs.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return FromContext(ctx).With().Str("component", component).Logger()
}
