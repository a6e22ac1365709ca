// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/observability"
	"github.com/Jithmi25/iwb25-127-idea-igniters/pkg/errutil"
)

// Authenticator is the part of *auth.Service the API needs.
type Authenticator interface {
	Signup(ctx context.Context, username, password, email string) error
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, authorization string) (string, error)
}

// Recoverer is the part of *auth.RecoveryService the API needs.
type Recoverer interface {
	Forgot(ctx context.Context, username, email string) (string, error)
	Reset(ctx context.Context, token, newPassword string) error
}

// Handlers serves the credential endpoints.
type Handlers struct {
	auth     Authenticator
	recovery Recoverer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, "signup", &req) {
		return
	}
	if err := h.auth.Signup(r.Context(), req.Username, req.Password, req.Email); err != nil {
		h.fail(w, r, "signup", http.StatusBadRequest, err)
		return
	}
	h.metrics.RecordOperation("signup", "success")
	writeJSON(w, http.StatusOK, Response{Message: MsgSignupOK})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, "login", &req) {
		return
	}
	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, "login", http.StatusBadRequest, err)
		return
	}
	h.metrics.RecordOperation("login", "success")
	writeJSON(w, http.StatusOK, Response{Message: MsgLoginOK, Token: token})
}

// Profile answers 200 whether or not the caller is authenticated.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	greeting, err := h.auth.Profile(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		h.fail(w, r, "profile", http.StatusOK, err)
		return
	}
	h.metrics.RecordOperation("profile", "success")
	writeJSON(w, http.StatusOK, Response{Message: greeting})
}

func (h *Handlers) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !h.decode(w, r, "forgot", &req) {
		return
	}
	msg, err := h.recovery.Forgot(r.Context(), req.Username, req.Email)
	if err != nil {
		h.fail(w, r, "forgot", http.StatusBadRequest, err)
		return
	}
	h.metrics.RecordOperation("forgot", "success")
	writeJSON(w, http.StatusOK, Response{Message: msg})
}

func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !h.decode(w, r, "reset", &req) {
		return
	}
	if err := h.recovery.Reset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(w, r, "reset", http.StatusBadRequest, err)
		return
	}
	h.metrics.RecordOperation("reset", "success")
	writeJSON(w, http.StatusOK, Response{Message: MsgResetOK})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		h.logger.DebugContext(r.Context(), "rejected request body", "operation", operation, "error", err)
		h.metrics.RecordOperation(operation, "invalid_payload")
		writeJSON(w, http.StatusBadRequest, Response{Message: MsgInvalidPayload})
		return false
	}
	return true
}

// fail writes the caller-safe message for err. Only internal errors are
// logged with their detail.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, operation string, status int, err error) {
	kind := auth.KindOf(err)
	h.metrics.RecordOperation(operation, kind.String())
	if kind == auth.KindInternal {
		errutil.LogError(r.Context(), h.logger, operation+" failed", err)
	} else {
		h.logger.DebugContext(r.Context(), operation+" rejected", "kind", kind.String(), "code", errutil.Code(err))
	}
	writeJSON(w, status, Response{Message: auth.PublicMessage(err)})
}
