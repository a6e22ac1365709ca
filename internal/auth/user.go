// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// Stored document field names. The same names are used by every store driver.
const (
	FieldID           = "_id"
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPasswordHash = "passwordHash"
	FieldSalt         = "salt"
	FieldResetToken   = "resetToken"
	FieldResetExpires = "resetExpires"
	FieldUpdatedAt    = "updatedAt"
)

// MinPasswordLength is the shortest password signup and reset accept.
const MinPasswordLength = 8

// User is a registered account.
//
// ResetToken and ResetExpires are set together by a recovery request and
// cleared together by a successful reset. ResetToken holds the SHA-256 of the
// token handed to the user, never the token itself.
type User struct {
	ID           string  `json:"_id" bson:"_id"`
	Username     string  `json:"username" bson:"username"`
	Email        string  `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash string  `json:"passwordHash" bson:"passwordHash"`
	Salt         string  `json:"salt" bson:"salt"`
	ResetToken   *string `json:"resetToken,omitempty" bson:"resetToken,omitempty"`
	ResetExpires *int64  `json:"resetExpires,omitempty" bson:"resetExpires,omitempty"`
	CreatedAt    int64   `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64   `json:"updatedAt" bson:"updatedAt"`
}

// UserStore is the collection both services read and write.
type UserStore = store.Collection[User]

// UniqueUserFields lists the fields a store must keep unique.
func UniqueUserFields() []string {
	return []string{FieldUsername, FieldEmail}
}

// NewUser builds a user with a fresh ULID and no outstanding reset.
func NewUser(username, email, passwordHash, salt string, now time.Time) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" || salt == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("password hash and salt are required")
	}

	ts := now.Unix()
	return &User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}, nil
}

// HasActiveReset reports whether a recovery token is outstanding and unexpired at now.
func (u *User) HasActiveReset(now time.Time) bool {
	if u.ResetToken == nil || u.ResetExpires == nil {
		return false
	}
	return *u.ResetExpires >= now.Unix()
}

// ValidateUsername rejects blank usernames. Usernames are otherwise stored and
// compared exactly as given.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return validationError("username is required")
	}
	return nil
}

// ValidatePassword enforces MinPasswordLength, counted in characters.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return validationError("password must be at least 8 characters")
	}
	return nil
}
