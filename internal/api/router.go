// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package api

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/observability"
)

// Route patterns.
const (
	RouteSignup  = "POST /api/signup"
	RouteLogin   = "POST /api/login"
	RouteProfile = "GET /api/profile"
	RouteForgot  = "POST /api/forgot"
	RouteReset   = "POST /api/reset"
)

// RouterConfig holds the router's collaborators. Auth and Recovery are
// required; a nil Metrics records nothing and a nil Logger uses slog.Default.
type RouterConfig struct {
	Auth           Authenticator
	Recovery       Recoverer
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter returns the API handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		auth:     cfg.Auth,
		recovery: cfg.Recovery,
		metrics:  cfg.Metrics,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(RouteSignup, h.Signup)
	mux.HandleFunc(RouteLogin, h.Login)
	mux.HandleFunc(RouteProfile, h.Profile)
	mux.HandleFunc(RouteForgot, h.Forgot)
	mux.HandleFunc(RouteReset, h.Reset)

	// requestLogging must receive the same *http.Request the mux annotates
	// with its pattern, so nothing between them may replace the request.
	var handler http.Handler = mux
	handler = cors(cfg.AllowedOrigins)(handler)
	handler = securityHeaders(handler)
	handler = requestLogging(logger, cfg.Metrics)(handler)
	return otelhttp.NewHandler(handler, "authsvc.api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
