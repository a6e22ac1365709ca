// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/logging"
)

// NewMigrateCmd creates the migrate subcommand and its children.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmdWithDeps(nil)
}

func newMigrateCmdWithDeps(deps *MigrateDeps) *cobra.Command {
	if deps == nil {
		deps = &MigrateDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = postgresMigrator
	}
	if deps.IndexEnsurer == nil {
		deps.IndexEnsurer = ensureMongoIndexes
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the user store schema",
		Long: `Apply or inspect the user store schema. PostgreSQL uses versioned
migrations. MongoDB only supports "up", which creates the unique indexes.`,
	}
	cmd.PersistentFlags().String("store-driver", config.DriverMongo, "user store: mongo or postgres")
	cmd.PersistentFlags().String("store-uri", "", "store connection string")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadMigrateConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.DriverMongo {
				names, err := deps.IndexEnsurer(cmd.Context(), cfg, migrateLogger(cmd, cfg))
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "ensure indexes").Wrap(err)
				}
				cmd.Printf("Indexes ready: %s\n", strings.Join(names, ", "))
				return nil
			}
			return withMigrator(cmd, cfg, deps, func(m Migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadPostgresMigrateConfig(cmd, "down")
			if err != nil {
				return err
			}
			return withMigrator(cmd, cfg, deps, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadPostgresMigrateConfig(cmd, "version")
			if err != nil {
				return err
			}
			return withMigrator(cmd, cfg, deps, func(m Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "read version").Wrap(err)
				}
				if dirty {
					cmd.Printf("Version: %d (dirty)\n", version)
				} else {
					cmd.Printf("Version: %d\n", version)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Set the recorded schema version and clear the dirty flag. Use after
fixing a migration that failed halfway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadPostgresMigrateConfig(cmd, "force")
			if err != nil {
				return err
			}
			return withMigrator(cmd, cfg, deps, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return oops.Code("MIGRATION_FAILED").
						With("operation", "force version").
						With("version", version).
						Wrap(err)
				}
				cmd.Printf("Forced version %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

// loadMigrateConfig loads configuration and checks only the store settings.
func loadMigrateConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case config.DriverMongo, config.DriverPostgres:
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Store.Driver).
			Errorf("migrate needs store.driver mongo or postgres, got %q", cfg.Store.Driver)
	}
	if cfg.Store.URI == "" {
		return nil, oops.Code("CONFIG_INVALID").
			Errorf("store.uri (%sSTORE_URI) is required", config.EnvPrefix)
	}
	return cfg, nil
}

func loadPostgresMigrateConfig(cmd *cobra.Command, subcommand string) (*config.Config, error) {
	cfg, err := loadMigrateConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Store.Driver).
			Errorf("migrate %s is only supported for postgres", subcommand)
	}
	return cfg, nil
}

func withMigrator(cmd *cobra.Command, cfg *config.Config, deps *MigrateDeps, fn func(Migrator) error) error {
	migrator, err := deps.MigratorFactory(cfg.Store.URI)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			migrateLogger(cmd, cfg).Warn("failed to close migrator", "error", closeErr)
		}
	}()
	return fn(migrator)
}

// migrateLogger logs to the command's error stream in text form.
func migrateLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger, err := logging.Setup(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  "text",
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	}
	return logger
}

// parseForceVersion reads a leading integer. Trailing characters are ignored.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("invalid version %q: must be an integer", s)
	}
	return version, nil
}
