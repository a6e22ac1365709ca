// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"github.com/samber/oops"

	"github.com/Jithmi25/iwb25-127-idea-igniters/pkg/errutil"
)

// Error codes returned to callers. Any other code is internal.
const (
	CodeValidation         = "AUTH_VALIDATION_FAILED"
	CodeUserExists         = "AUTH_USER_EXISTS"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUnauthorized       = "AUTH_UNAUTHORIZED"
	CodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	CodeUserNotFound       = "RESET_USER_NOT_FOUND"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
)

// Caller-facing messages. Login and reset deliberately merge their failure
// causes into one message each.
const (
	MsgUserExists         = "username or email already exists"
	MsgInvalidCredentials = "invalid username or password"
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidToken       = "Invalid or expired token"
	MsgUserNotFound       = "user not found"
	MsgInvalidResetToken  = "invalid or expired token"
	MsgInternal           = "internal server error"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

// Error kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindInvalidToken
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindInvalidToken:
		return "invalid_token"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// KindOf maps err to its kind using its oops code. Errors without a known
// code are internal.
func KindOf(err error) Kind {
	switch errutil.Code(err) {
	case CodeValidation:
		return KindValidation
	case CodeUserExists:
		return KindConflict
	case CodeInvalidCredentials:
		return KindAuth
	case CodeUserNotFound:
		return KindNotFound
	case CodeResetTokenInvalid:
		return KindInvalidToken
	case CodeUnauthorized, CodeTokenInvalid:
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// PublicMessage returns the message a caller may see for err.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return MsgInternal
	}
	return errutil.PublicMessage(err, MsgInternal)
}

func validationError(msg string) error {
	return oops.Code(CodeValidation).Public(msg).Errorf("%s", msg)
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Public(MsgInvalidCredentials).Errorf(MsgInvalidCredentials)
}

func invalidResetToken(reason string) error {
	return oops.Code(CodeResetTokenInvalid).
		With("reason", reason).
		Public(MsgInvalidResetToken).
		Errorf(MsgInvalidResetToken)
}
