// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the coarse authorization role carried in access tokens.
type Role string

// Known roles.
const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
)

// Valid returns true if the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCandidate
}

// emailRegex matches syntactically well-formed email addresses. It is
/// deliberately loose: local part, @, domain with at least one dot.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents an identity record as owned by the UserDirectory.
//
// PasswordHash never crosses this package's public boundary; callers
// receive values produced by Sanitized.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	TokenVersion int
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with an active account and token
// version zero. The password hash must already be produced by a
// PasswordHasher; this constructor never sees plaintext.
func NewUser(email, passwordHash string, role Role) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("AUTH_INVALID_USER").
			With("role", string(role)).
			Errorf("unknown role %q", role)
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Sanitized returns a copy of the user with the password hash stripped.
// Every User handed to callers outside this package goes through here.
func (u *User) Sanitized() *User {
	s := *u
	s.PasswordHash = ""
	return &s
}

// ValidateEmail checks that the email is syntactically well-formed.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email is not well-formed")
	}
	return nil
}

// UserDirectory is the source of truth for identity records.
//
// Implementations return ErrNotFound (possibly wrapped) when no record
// matches; any other error is an infrastructure failure and is never
// masked by callers.
type UserDirectory interface {
	// FindByEmail retrieves a user by email (case-insensitive).
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// Create stores a new user. Returns ErrEmailTaken (wrapped) when the
	// email is already registered.
	Create(ctx context.Context, user *User) error

	// BumpTokenVersion increments the user's token version, invalidating
	// every refresh token issued before the bump.
	BumpTokenVersion(ctx context.Context, id ulid.ULID) (int, error)
}
