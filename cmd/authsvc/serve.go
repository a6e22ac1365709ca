// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/api"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/logging"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/observability"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

const serviceName = "authsvc"

// shutdownTimeout bounds graceful shutdown of both servers and the store.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the credential HTTP API and, unless metrics.addr is empty, the
metrics and health probe server. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServeWithDeps(ctx, cfg, cmd, nil)
		},
	}

	cmd.Flags().String("store-driver", config.DriverMongo, "user store: mongo, postgres or memory")
	cmd.Flags().String("store-uri", "", "store connection string")
	cmd.Flags().String("http-addr", ":9090", "API listen address")
	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", "json", "log format (json or text)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// runServeWithDeps runs until ctx is cancelled or a server fails.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.BackendOpener == nil {
		deps.BackendOpener = openBackend
	}
	if deps.APIServerFactory == nil {
		deps.APIServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) Server {
			return api.NewServer(addr, handler, logger)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, gatherer prometheus.Gatherer, pinger store.Pinger, logger *slog.Logger) Server {
			return observability.NewServer(addr, gatherer, pinger, logger)
		}
	}

	if err := cfg.Validate(); err != nil {
		return oops.With("operation", "validate configuration").Wrap(err)
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  deps.LogWriter,
	})
	if err != nil {
		return oops.With("operation", "set up logging").Wrap(err)
	}

	logger.Info("starting authsvc",
		"store_driver", cfg.Store.Driver,
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
	)

	tokens, err := auth.NewTokenIssuer(cfg.TokenSettings())
	if err != nil {
		return oops.With("operation", "create token issuer").Wrap(err)
	}

	backend, err := deps.BackendOpener(ctx, cfg, logger)
	if err != nil {
		return oops.Code("STORE_OPEN_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := backend.Close(closeCtx); closeErr != nil {
			logger.Warn("error closing store", "error", closeErr)
		}
	}()
	logger.Info("connected to store", "driver", cfg.Store.Driver)

	hasher := auth.NewArgon2idHasher()
	authSvc, err := auth.NewAuthService(backend.Users, hasher, tokens, auth.WithLogger(logger))
	if err != nil {
		return oops.With("operation", "create auth service").Wrap(err)
	}
	recovery, err := auth.NewRecoveryService(backend.Users, hasher, resetNotifier(cfg, logger), auth.WithLogger(logger))
	if err != nil {
		return oops.With("operation", "create recovery service").Wrap(err)
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	handler := api.NewRouter(api.RouterConfig{
		Auth:           authSvc,
		Recovery:       recovery,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	apiServer := deps.APIServerFactory(cfg.HTTP.Addr, handler, logger)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		return oops.Code("API_START_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api", logger)

	var obsServer Server
	if cfg.MetricsEnabled() {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, registry, backend.Pinger, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil {
				logger.Warn("failed to stop api server during cleanup", "error", stopErr)
			}
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
	}

	cmd.Println("authsvc started")
	logger.Info("authsvc ready", "api_addr", apiServer.Addr())

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// resetNotifier chooses how recovery tokens reach the account holder.
func resetNotifier(cfg *config.Config, logger *slog.Logger) auth.ResetNotifier {
	if cfg.Reset.DeliverInResponse {
		return auth.ResponseNotifier{}
	}
	return auth.LogNotifier{Logger: logger}
}

// monitorServerErrors cancels ctx when a server reports a serve error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
