// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/keygate/keygate/pkg/errutil"
)

// Session is the result of a successful login: the minted token pair and
// the sanitized user record.
type Session struct {
	Token            string
	TokenExpiresAt   time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *User
}

// RefreshResult is the result of a successful token refresh.
type RefreshResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService adjudicates authentication attempts. It owns no persistent
// state; identity lives in the UserDirectory and revocation in the
// TokenRevoker.
type AuthService struct {
	directory UserDirectory
	hasher    PasswordHasher
	issuer    TokenIssuer
	revoker   TokenRevoker
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with the default logger.
func NewAuthService(directory UserDirectory, hasher PasswordHasher, issuer TokenIssuer, revoker TokenRevoker) (*AuthService, error) {
	return NewAuthServiceWithLogger(directory, hasher, issuer, revoker, slog.Default())
}

// NewAuthServiceWithLogger creates an AuthService with an explicit logger.
func NewAuthServiceWithLogger(directory UserDirectory, hasher PasswordHasher, issuer TokenIssuer, revoker TokenRevoker, logger *slog.Logger) (*AuthService, error) {
	if directory == nil {
		return nil, oops.Errorf("user directory is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if revoker == nil {
		return nil, oops.Errorf("token revoker is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	return &AuthService{
		directory: directory,
		hasher:    hasher,
		issuer:    issuer,
		revoker:   revoker,
		logger:    logger,
	}, nil
}

// Login adjudicates a login attempt and mints a token pair on success.
//
// Pre-lookup input validation failures collapse into one generic
// "login failed" rejection on purpose: at this stage the caller learns
// nothing about which field was malformed. Account-creation flows get the
// detailed messages from ValidatePassword instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if password == "" || ValidateEmail(email) != nil {
		LoginAttempts.WithLabelValues(StatusRejected).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").Errorf("login failed")
	}

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown email: rejected without invoking the hasher, with the
			// same reason as a wrong password.
			LoginAttempts.WithLabelValues(StatusRejected).Inc()
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
		}
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_DIRECTORY_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}

	if !user.IsActive {
		LoginAttempts.WithLabelValues(StatusInactive).Inc()
		return nil, oops.Code("AUTH_ACCOUNT_INACTIVE").Errorf("account is inactive")
	}

	start := time.Now()
	match, err := s.hasher.Verify(password, user.PasswordHash)
	HashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !match {
		LoginAttempts.WithLabelValues(StatusRejected).Inc()
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
	}

	token, tokenExpiry, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}

	refreshToken, refreshExpiry, err := s.issuer.IssueRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue refresh token").
			Wrap(err)
	}

	// Last-login bookkeeping is best effort; the login already succeeded.
	if err := s.directory.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		errutil.LogError(s.logger, "failed to record last login", err)
	}

	LoginAttempts.WithLabelValues(StatusSuccess).Inc()
	return &Session{
		Token:            token,
		TokenExpiresAt:   tokenExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
		User:             user.Sanitized(),
	}, nil
}

// VerifyToken verifies an access token and re-fetches the current user
// record, so a revoked token or a deactivated or deleted account is
// rejected even when the token itself is structurally valid.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*User, error) {
	identity, err := s.issuer.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			TokenVerifications.WithLabelValues("access", StatusExpired).Inc()
		} else {
			TokenVerifications.WithLabelValues("access", StatusRejected).Inc()
		}
		return nil, err
	}

	revoked, err := s.revoker.IsInvalidated(ctx, identity.TokenID)
	if err != nil {
		TokenVerifications.WithLabelValues("access", StatusError).Inc()
		return nil, oops.Code("AUTH_REVOCATION_CHECK_FAILED").
			With("operation", "check revocation registry").
			Wrap(err)
	}
	if revoked {
		TokenVerifications.WithLabelValues("access", StatusRevoked).Inc()
		return nil, oops.Code("AUTH_TOKEN_REVOKED").Errorf("token has been revoked")
	}

	user, err := s.directory.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			TokenVerifications.WithLabelValues("access", StatusRejected).Inc()
			return nil, ErrTokenInvalid
		}
		TokenVerifications.WithLabelValues("access", StatusError).Inc()
		return nil, oops.Code("AUTH_DIRECTORY_FAILED").
			With("operation", "find user by id").
			Wrap(err)
	}
	if !user.IsActive {
		TokenVerifications.WithLabelValues("access", StatusInactive).Inc()
		return nil, oops.Code("AUTH_ACCOUNT_INACTIVE").Errorf("account is inactive")
	}

	TokenVerifications.WithLabelValues("access", StatusSuccess).Inc()
	return user.Sanitized(), nil
}

// Refresh verifies a refresh token and mints a new access token. The
// refresh token itself is not rotated; a token whose embedded version no
// longer matches the user's stored token version is rejected as stale.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	identity, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			TokenVerifications.WithLabelValues("refresh", StatusExpired).Inc()
		} else {
			TokenVerifications.WithLabelValues("refresh", StatusRejected).Inc()
		}
		return nil, err
	}

	user, err := s.directory.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			TokenVerifications.WithLabelValues("refresh", StatusRejected).Inc()
			return nil, ErrTokenInvalid
		}
		TokenVerifications.WithLabelValues("refresh", StatusError).Inc()
		return nil, oops.Code("AUTH_DIRECTORY_FAILED").
			With("operation", "find user by id").
			Wrap(err)
	}
	if !user.IsActive {
		TokenVerifications.WithLabelValues("refresh", StatusInactive).Inc()
		return nil, oops.Code("AUTH_ACCOUNT_INACTIVE").Errorf("account is inactive")
	}

	if user.TokenVersion != identity.TokenVersion {
		TokenVerifications.WithLabelValues("refresh", StatusStale).Inc()
		return nil, oops.Code("AUTH_REFRESH_STALE").Errorf("refresh token is stale")
	}

	token, expiresAt, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		TokenVerifications.WithLabelValues("refresh", StatusError).Inc()
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}

	TokenVerifications.WithLabelValues("refresh", StatusSuccess).Inc()
	return &RefreshResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout records the token in the revocation registry. It is idempotent
// and never fails the user-visible flow: malformed or already expired
// tokens have nothing to revoke and still report success.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	identity, err := s.issuer.VerifyAccessToken(token)
	if err != nil {
		// Nothing to revoke; the token cannot verify anyway.
		return nil
	}

	if err := s.revoker.Invalidate(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		errutil.LogError(s.logger, "failed to record token revocation", err)
		return nil
	}

	TokenRevocations.Inc()
	return nil
}

// HashPassword hashes a plaintext password for user-creation flows.
func (s *AuthService) HashPassword(password string) (string, error) {
	start := time.Now()
	defer func() {
		HashDuration.Observe(time.Since(start).Seconds())
	}()
	return s.hasher.Hash(password)
}

// ValidatePassword checks a password against the complexity policy.
func (s *AuthService) ValidatePassword(password string) error {
	return ValidatePassword(password)
}
