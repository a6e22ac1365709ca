// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// Options configures Open.
type Options struct {
	DSN            string
	ConnectTimeout time.Duration
	Retry          store.ConnectRetry
	Logger         *slog.Logger
}

// Open creates a connection pool and waits until the server answers a ping.
func Open(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	if opts.DSN == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").With("driver", "postgres").Wrap(err)
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("driver", "postgres").Wrap(err)
	}

	if err := store.Connect(ctx, opts.Logger, "postgres", opts.Retry, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
