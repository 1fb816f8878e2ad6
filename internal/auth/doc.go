// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

// Package auth provides the credential issuance and verification core for
// Keygate.
//
// # Domain Types
//
// User is the identity record owned by the UserDirectory. Every User value
// returned across this package's public boundary is sanitized (password
// hash stripped) via User.Sanitized.
//
// # Capabilities
//
// The AuthService orchestrator composes injectable capabilities:
//   - UserDirectory - identity lookup and last-login bookkeeping
//   - PasswordHasher - one-way salted hashing and verification
//   - TokenIssuer - minting and verification of access/refresh tokens
//   - TokenRevoker - the invalidation registry consulted at verify time
//
// All four are interfaces supplied at construction so tests can substitute
// them; production wiring lives in cmd/keygate.
package auth
