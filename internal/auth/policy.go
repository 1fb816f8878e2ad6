// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"errors"
	"unicode"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Password policy violations. Each rule reports its own message so
// account-creation flows can surface every failure at once.
var (
	errPasswordTooShort = oops.Code("AUTH_WEAK_PASSWORD").Errorf("password must be at least %d characters", MinPasswordLength)
	errPasswordNoLower  = oops.Code("AUTH_WEAK_PASSWORD").Errorf("password must contain a lowercase letter")
	errPasswordNoUpper  = oops.Code("AUTH_WEAK_PASSWORD").Errorf("password must contain an uppercase letter")
	errPasswordNoDigit  = oops.Code("AUTH_WEAK_PASSWORD").Errorf("password must contain a digit")
)

// ValidatePassword checks the password against the complexity policy.
// All violations are collected and returned joined, in a fixed order, so
// the result is deterministic for a given input. Pure function, no I/O.
func ValidatePassword(password string) error {
	var violations []error

	if len(password) < MinPasswordLength {
		violations = append(violations, errPasswordTooShort)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLower {
		violations = append(violations, errPasswordNoLower)
	}
	if !hasUpper {
		violations = append(violations, errPasswordNoUpper)
	}
	if !hasDigit {
		violations = append(violations, errPasswordNoDigit)
	}

	return errors.Join(violations...)
}
