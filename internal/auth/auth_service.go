// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// TokenService issues and validates bearer tokens. *TokenIssuer implements it.
type TokenService interface {
	Issue(subject string) (string, error)
	Validate(token string) (*Claims, error)
}

// Service provides signup, login and profile.
type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenService
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates a new Service.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenService, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	o := buildOptions(opts)
	if o.nilLogger {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: o.logger,
		now:    o.now,
	}, nil
}

// Never matches: no salt/secret pair hashes to all zeros. Verified on the
// unknown-user path so it costs the same as a real comparison.
const (
	dummySalt   = "00000000000000000000000000000000"
	dummyDigest = "0000000000000000000000000000000000000000000000000000000000000000"
)

// Signup registers a user. The password length is checked before anything
// else. A username or non-empty email that already exists is a conflict,
// whether found by the pre-check or by the store's unique index.
func (s *Service) Signup(ctx context.Context, username, password, email string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.Signup", trace.WithAttributes(attribute.String("username", username)))
	defer func() { endSpan(span, err) }()

	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}

	identity := []store.Filter{{FieldUsername: username}}
	if email != "" {
		identity = append(identity, store.Filter{FieldEmail: email})
	}
	existing, err := s.users.FindOne(ctx, store.AnyOf(identity...))
	if err != nil {
		return oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "find existing user").
			Wrap(err)
	}
	if existing != nil {
		return userExists(username)
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return oops.Code("AUTH_SIGNUP_FAILED").With("operation", "generate salt").Wrap(err)
	}
	user, err := NewUser(username, email, s.hasher.Hash(password, salt), salt, s.now())
	if err != nil {
		return oops.Code("AUTH_SIGNUP_FAILED").With("operation", "build user").Wrap(err)
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return userExists(username)
		}
		return oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", username)
	return nil
}

// Login checks the password and returns a bearer token for the user.
// An unknown username and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.Login", trace.WithAttributes(attribute.String("username", username)))
	defer func() { endSpan(span, err) }()

	user, err := s.users.FindOne(ctx, store.Filter{FieldUsername: username})
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	if user == nil {
		s.hasher.Verify(password, dummySalt, dummyDigest)
		return "", invalidCredentials()
	}
	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		return "", invalidCredentials()
	}

	token, err = s.tokens.Issue(user.Username)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}
	return token, nil
}

// Profile validates the Authorization header value and returns a greeting
// for the token's subject. It never reads the store.
func (s *Service) Profile(ctx context.Context, authorization string) (greeting string, err error) {
	ctx, span := tracer.Start(ctx, "auth.Profile")
	defer func() { endSpan(span, err) }()

	raw, ok := BearerToken(authorization)
	if !ok {
		return "", oops.Code(CodeUnauthorized).Public(MsgUnauthorized).Errorf("missing bearer token")
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "bearer token rejected", "reason", err.Error())
		return "", oops.Code(CodeTokenInvalid).
			With("reason", err.Error()).
			Public(MsgInvalidToken).
			Errorf("bearer token rejected")
	}
	return Greeting(claims.Subject), nil
}

// Greeting is the profile message for subject.
func Greeting(subject string) string {
	return fmt.Sprintf("Welcome, %s! Your session is active.", subject)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(authorization string) (string, bool) {
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func userExists(username string) error {
	return oops.Code(CodeUserExists).
		With("username", username).
		Public(MsgUserExists).
		Errorf(MsgUserExists)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("error.kind", KindOf(err).String()))
		if KindOf(err) == KindInternal {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
