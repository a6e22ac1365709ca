// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"bytes"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the bearer token lifetime when TokenConfig.TTL is zero.
const DefaultTokenTTL = 5 * time.Minute

// MinSecretLength is the shortest signing secret accepted.
const MinSecretLength = 16

// TokenConfig is fixed at startup and never modified afterwards.
type TokenConfig struct {
	Issuer   string
	Audience string
	Secret   []byte
	TTL      time.Duration
}

// Validate reports every missing or unusable field at once.
func (c TokenConfig) Validate() error {
	var missing []string
	if c.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if c.Audience == "" {
		missing = append(missing, "audience")
	}
	if len(c.Secret) == 0 {
		missing = append(missing, "secret")
	}
	if len(missing) > 0 {
		return oops.Code("TOKEN_CONFIG_INVALID").
			With("missing", missing).
			Errorf("token config missing: %s", strings.Join(missing, ", "))
	}
	if len(c.Secret) < MinSecretLength {
		return oops.Code("TOKEN_CONFIG_INVALID").
			Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if c.TTL < 0 {
		return oops.Code("TOKEN_CONFIG_INVALID").Errorf("token ttl must not be negative")
	}
	return nil
}

// Claims are the registered JWT claims carried by a bearer token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 bearer tokens for one issuer and audience.
type TokenIssuer struct {
	issuer   string
	audience string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithTokenClock replaces time.Now for issuing and validating.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer validates cfg and copies the secret, so later changes to the
// caller's slice have no effect.
func NewTokenIssuer(cfg TokenConfig, opts ...TokenOption) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	t := &TokenIssuer{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		secret:   bytes.Clone(cfg.Secret),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue returns a signed token whose subject is subject.
func (t *TokenIssuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Errorf("subject is required")
	}

	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").With("subject", subject).Wrap(err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer, audience and expiry. Any
// failure is reported with the single code TOKEN_INVALID; the parser's reason
// is kept on the error for logs.
func (t *TokenIssuer) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token has no subject")
	}
	return claims, nil
}
