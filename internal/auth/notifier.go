// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResetNotifier delivers a freshly issued recovery token to the account
// holder and returns the confirmation message the caller of Forgot sees.
type ResetNotifier interface {
	Deliver(ctx context.Context, user *User, token string, expiresAt time.Time) (string, error)
}

// ResponseNotifier returns the token inside the confirmation message. The
// HTTP response becomes the delivery channel, so it is only suitable where
// the caller is trusted to relay it.
type ResponseNotifier struct{}

// Deliver implements ResetNotifier.
func (ResponseNotifier) Deliver(_ context.Context, _ *User, token string, expiresAt time.Time) (string, error) {
	return fmt.Sprintf("Password reset token: %s (valid until %s)", token, expiresAt.UTC().Format(time.RFC3339)), nil
}

// LogNotifier writes the token to the operator log and keeps it out of the
// response. Intended for deployments that relay tokens out of band.
type LogNotifier struct {
	Logger *slog.Logger
}

// MsgResetSent is the confirmation when the token is not returned inline.
const MsgResetSent = "Password reset instructions have been sent"

// Deliver implements ResetNotifier.
func (n LogNotifier) Deliver(ctx context.Context, user *User, token string, expiresAt time.Time) (string, error) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset token issued",
		"user_id", user.ID,
		"username", user.Username,
		"token", token,
		"expires_at", expiresAt.UTC())
	return MsgResetSent, nil
}
