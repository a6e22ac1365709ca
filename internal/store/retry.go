// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectRetry bounds how hard Connect tries before giving up.
type ConnectRetry struct {
	Attempts uint64
	Base     time.Duration
}

// DefaultConnectRetry waits 250ms, 500ms, 1s and 2s between five attempts.
var DefaultConnectRetry = ConnectRetry{Attempts: 5, Base: 250 * time.Millisecond}

// Connect runs dial with exponential backoff. Every failure is treated as
// transient; the last error is returned once attempts are exhausted.
func Connect(ctx context.Context, logger *slog.Logger, driver string, policy ConnectRetry, dial func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Attempts == 0 {
		policy = DefaultConnectRetry
	}

	backoff := retry.WithMaxRetries(policy.Attempts-1, retry.NewExponential(policy.Base))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := dial(ctx); err != nil {
			logger.WarnContext(ctx, "store connection attempt failed",
				"driver", driver,
				"attempt", attempt,
				"max_attempts", policy.Attempts,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("STORE_CONNECT_FAILED").
			With("driver", driver).
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
