// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package auth implements the account credential lifecycle: registration,
// login, bearer token issuance and validation, and password recovery.
//
// # Primitives
//
//   - Argon2idHasher - deterministic salted password digests
//   - TokenIssuer - HS256 bearer tokens bound to one issuer and audience
//   - GenerateResetToken - single-use recovery tokens, stored hashed
//
// # Services
//
//   - Service - Signup, Login, Profile
//   - RecoveryService - Forgot, Reset
//
// Services are created with New*Service constructors that validate
// dependencies. Both read and write the same UserStore and hold no
// per-request state, so one instance serves all requests.
//
// # Errors
//
// Caller-visible failures carry one of the Code* oops codes and a public
// message; KindOf and PublicMessage translate any error for the HTTP layer.
// Everything else is internal and must not be shown to callers.
package auth
