// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Fixed argon2id parameters. Changing any of them invalidates every stored
// hash, since Hash must stay deterministic across processes.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2KeyLen  = 32        // output length in bytes
	saltBytes     = 16
)

// PasswordHasher derives and checks password digests. The salt is stored
// next to the digest rather than inside it.
type PasswordHasher interface {
	// Hash returns the hex digest of secret under salt. Same inputs, same output.
	Hash(secret, salt string) string

	// Verify reports whether secret under salt produces digest.
	Verify(secret, salt, digest string) bool

	// NewSalt returns a fresh random salt.
	NewSalt() (string, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash returns a 64 character hex digest.
func (h *Argon2idHasher) Hash(secret, salt string) string {
	key := argon2.IDKey([]byte(secret), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return hex.EncodeToString(key)
}

// Verify recomputes the digest and compares in constant time.
func (h *Argon2idHasher) Verify(secret, salt, digest string) bool {
	computed := h.Hash(secret, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// NewSalt returns 16 random bytes, hex encoded.
func (h *Argon2idHasher) NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return hex.EncodeToString(b), nil
}
