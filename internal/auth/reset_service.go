// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// RecoveryService handles forgotten passwords.
type RecoveryService struct {
	users    UserStore
	hasher   PasswordHasher
	notifier ResetNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(users UserStore, hasher PasswordHasher, notifier ResetNotifier, opts ...Option) (*RecoveryService, error) {
	if users == nil {
		return nil, oops.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("reset notifier is required")
	}
	o := buildOptions(opts)
	if o.nilLogger {
		return nil, oops.Errorf("logger is required")
	}
	return &RecoveryService{
		users:    users,
		hasher:   hasher,
		notifier: notifier,
		logger:   o.logger,
		now:      o.now,
	}, nil
}

// Forgot issues a recovery token for the user matching both username and
// email, replacing any token already outstanding. The returned message comes
// from the notifier.
func (s *RecoveryService) Forgot(ctx context.Context, username, email string) (msg string, err error) {
	ctx, span := tracer.Start(ctx, "recovery.Forgot", trace.WithAttributes(attribute.String("username", username)))
	defer func() { endSpan(span, err) }()

	if username == "" || email == "" {
		return "", userNotFound()
	}

	user, err := s.users.FindOne(ctx, store.Filter{FieldUsername: username, FieldEmail: email})
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "find user").
			Wrap(err)
	}
	if user == nil {
		return "", userNotFound()
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	now := s.now()
	expires := ResetExpiresAt(now)
	matched, err := s.users.UpdateFields(ctx, store.Filter{FieldID: user.ID}, store.Update{
		Set: map[string]any{
			FieldResetToken:   hash,
			FieldResetExpires: expires,
			FieldUpdatedAt:    now.Unix(),
		},
	})
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "store token").
			With("user_id", user.ID).
			Wrap(err)
	}
	if matched == 0 {
		return "", userNotFound()
	}

	msg, err = s.notifier.Deliver(ctx, user, token, time.Unix(expires, 0))
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "deliver token").
			With("user_id", user.ID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return msg, nil
}

// Reset sets a new password using a recovery token. The new password is
// validated first. The token is consumed in the same write that stores the
// new hash and salt, and that write only applies while the token is still
// present, so a token can succeed at most once.
func (s *RecoveryService) Reset(ctx context.Context, token, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "recovery.Reset")
	defer func() { endSpan(span, err) }()

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if token == "" {
		return invalidResetToken("empty")
	}

	hash := HashResetToken(token)
	user, err := s.users.FindOne(ctx, store.Filter{FieldResetToken: hash})
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "find user by token").
			Wrap(err)
	}
	if user == nil {
		return invalidResetToken("unknown")
	}

	now := s.now()
	if user.ResetExpires == nil {
		return invalidResetToken("no expiry")
	}
	if *user.ResetExpires < now.Unix() {
		s.clearExpired(ctx, user.ID, hash)
		return invalidResetToken("expired")
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").With("operation", "generate salt").Wrap(err)
	}

	matched, err := s.users.UpdateFields(ctx,
		store.Filter{FieldID: user.ID, FieldResetToken: hash},
		store.Update{
			Set: map[string]any{
				FieldPasswordHash: s.hasher.Hash(newPassword, salt),
				FieldSalt:         salt,
				FieldUpdatedAt:    now.Unix(),
			},
			Unset: []string{FieldResetToken, FieldResetExpires},
		})
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", user.ID).
			Wrap(err)
	}
	if matched == 0 {
		return invalidResetToken("consumed")
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

// clearExpired removes an expired token. Failure only leaves a dead token
// behind, so it is logged and otherwise ignored.
func (s *RecoveryService) clearExpired(ctx context.Context, userID, hash string) {
	_, err := s.users.UpdateFields(ctx,
		store.Filter{FieldID: userID, FieldResetToken: hash},
		store.Update{Unset: []string{FieldResetToken, FieldResetExpires}})
	if err != nil {
		s.logger.WarnContext(ctx, "best-effort expired token cleanup failed",
			"user_id", userID,
			"operation", "clear_expired_token",
			"error", err)
	}
}

func userNotFound() error {
	return oops.Code(CodeUserNotFound).Public(MsgUserNotFound).Errorf(MsgUserNotFound)
}
