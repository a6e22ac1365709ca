// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// BackendOpener connects to the configured user store.
	// Default: openBackend
	BackendOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error)

	// APIServerFactory creates the HTTP API server.
	// Default: api.NewServer
	APIServerFactory func(addr string, handler http.Handler, logger *slog.Logger) Server

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, gatherer prometheus.Gatherer, pinger store.Pinger, logger *slog.Logger) Server

	// LogWriter receives log output.
	// Default: os.Stderr
	LogWriter io.Writer
}

// MigrateDeps contains injectable dependencies for the migrate command.
type MigrateDeps struct {
	// MigratorFactory opens a PostgreSQL migrator.
	// Default: postgres.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// IndexEnsurer creates the MongoDB indexes and returns their names.
	// Default: ensureMongoIndexes
	IndexEnsurer func(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]string, error)
}

// Backend is an opened user store.
type Backend struct {
	Users  auth.UserStore
	Pinger store.Pinger
	Close  func(ctx context.Context) error
}

// Server wraps the methods used from api.Server and observability.Server.
type Server interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// Migrator wraps the methods used from postgres.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Close() error
}
