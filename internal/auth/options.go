// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth")

type serviceOptions struct {
	logger    *slog.Logger
	now       func() time.Time
	nilLogger bool
}

// Option configures the auth and recovery services.
type Option func(*serviceOptions)

// WithLogger sets the service logger. Passing nil is a constructor error.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		if logger == nil {
			o.nilLogger = true
			return
		}
		o.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
