// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store/mongodb"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store/postgres"
)

// openBackend connects to the configured store. With store.auto_migrate set
// it also brings the schema up to date before returning.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory user store; accounts are lost on exit")
		users := store.NewMemory[auth.User](auth.UniqueUserFields()...)
		return &Backend{
			Users:  users,
			Pinger: users,
			Close:  func(context.Context) error { return nil },
		}, nil

	case config.DriverMongo:
		client, err := mongodb.Open(ctx, mongodb.Options{
			URI:            cfg.Store.URI,
			Database:       cfg.Store.Database,
			ConnectTimeout: cfg.Store.ConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, oops.With("operation", "open mongodb").Wrap(err)
		}
		coll := client.Collection(cfg.Store.Collection)
		if cfg.Store.AutoMigrate {
			names, err := mongodb.EnsureIndexes(ctx, coll, mongodb.UserIndexes())
			if err != nil {
				_ = client.Close(context.Background()) //nolint:errcheck // index error takes precedence
				return nil, err
			}
			logger.Info("mongodb indexes ready", "collection", cfg.Store.Collection, "indexes", names)
		}
		return &Backend{
			Users:  mongodb.NewCollection[auth.User](coll),
			Pinger: client,
			Close:  client.Close,
		}, nil

	case config.DriverPostgres:
		if cfg.Store.AutoMigrate {
			if err := migrateUp(cfg.Store.URI, postgresMigrator, logger); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.Open(ctx, postgres.Options{
			DSN:            cfg.Store.URI,
			ConnectTimeout: cfg.Store.ConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, oops.With("operation", "open postgres").Wrap(err)
		}
		users := postgres.NewCollection[auth.User](pool, postgres.UsersTable)
		return &Backend{
			Users:  users,
			Pinger: users,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		return nil, oops.Code("CONFIG_INVALID").With("driver", cfg.Store.Driver).Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func postgresMigrator(databaseURL string) (Migrator, error) {
	//nolint:wrapcheck // NewMigrator returns oops errors
	return postgres.NewMigrator(databaseURL)
}

// migrateUp applies pending PostgreSQL migrations.
func migrateUp(databaseURL string, factory func(string) (Migrator, error), logger *slog.Logger) error {
	migrator, err := factory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	version, _, err := migrator.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read version").Wrap(err)
	}
	logger.Info("postgres schema ready", "version", version)
	return nil
}

// ensureMongoIndexes connects just long enough to create the user indexes.
func ensureMongoIndexes(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	client, err := mongodb.Open(ctx, mongodb.Options{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		ConnectTimeout: cfg.Store.ConnectTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, oops.With("operation", "open mongodb").Wrap(err)
	}
	defer func() {
		if closeErr := client.Close(context.Background()); closeErr != nil {
			logger.Warn("failed to close mongodb client", "error", closeErr)
		}
	}()

	//nolint:wrapcheck // EnsureIndexes returns oops errors
	return mongodb.EnsureIndexes(ctx, client.Collection(cfg.Store.Collection), mongodb.UserIndexes())
}
