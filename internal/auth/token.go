// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token verification failures. The two codes are deliberately the only
// granularity exposed: callers learn expired vs. not-valid, nothing about
// signatures or claim shapes.
var (
	ErrTokenExpired = oops.Code("AUTH_TOKEN_EXPIRED").Errorf("token has expired")
	ErrTokenInvalid = oops.Code("AUTH_TOKEN_INVALID").Errorf("token is not valid")
)

// AccessIdentity is the result of a successful access token verification.
type AccessIdentity struct {
	UserID    ulid.ULID
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// RefreshIdentity is the result of a successful refresh token verification.
type RefreshIdentity struct {
	UserID       ulid.ULID
	TokenVersion int
	TokenID      string
	ExpiresAt    time.Time
}

// TokenIssuer mints and verifies the two token kinds.
type TokenIssuer interface {
	// IssueAccessToken mints a short-lived access token.
	IssueAccessToken(userID ulid.ULID, email string, role Role) (token string, expiresAt time.Time, err error)

	// IssueRefreshToken mints a long-lived refresh token bound to the
	// user's current token version.
	IssueRefreshToken(userID ulid.ULID, tokenVersion int) (token string, expiresAt time.Time, err error)

	// VerifyAccessToken checks signature and expiry of an access token.
	// Fails with ErrTokenExpired or ErrTokenInvalid.
	VerifyAccessToken(token string) (*AccessIdentity, error)

	// VerifyRefreshToken checks signature and expiry of a refresh token.
	VerifyRefreshToken(token string) (*RefreshIdentity, error)

	// ExpiryOf extracts the expiry claim without verifying the signature.
	// Used by logout to bound revocation retention; never trusted for
	// authorization decisions.
	ExpiryOf(token string) (time.Time, error)
}

// Token kind discriminator. Carried as a claim so the two kinds never
// cross-verify even if a deployment configures identical secrets.
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// accessClaims is the wire shape of access token claims.
type accessClaims struct {
	jwt.RegisteredClaims
	Kind  string `json:"kind"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// refreshClaims is the wire shape of refresh token claims.
type refreshClaims struct {
	jwt.RegisteredClaims
	Kind         string `json:"kind"`
	TokenVersion int    `json:"token_version"`
}

// JWTIssuerConfig configures a JWTIssuer. Secrets are injected, never
// hard-coded, so rotation stays possible at the deployment layer.
type JWTIssuerConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now is the clock source. Defaults to time.Now.
	Now func() time.Time
}

// JWTIssuer implements TokenIssuer using HS256-signed JWTs with separate
// symmetric secrets per token kind.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. Both secrets are required; zero TTLs
// fall back to the defaults.
func NewJWTIssuer(cfg JWTIssuerConfig) (*JWTIssuer, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, oops.Code("AUTH_ISSUER_CONFIG").Errorf("access secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, oops.Code("AUTH_ISSUER_CONFIG").Errorf("refresh secret is required")
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &JWTIssuer{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           now,
	}, nil
}

// IssueAccessToken mints a short-lived access token.
func (i *JWTIssuer) IssueAccessToken(userID ulid.ULID, email string, role Role) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.accessTTL)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:  tokenKindAccess,
		Email: email,
		Role:  string(role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("kind", "access").
			Wrap(err)
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken mints a long-lived refresh token.
func (i *JWTIssuer) IssueRefreshToken(userID ulid.ULID, tokenVersion int) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.refreshTTL)

	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:         tokenKindRefresh,
		TokenVersion: tokenVersion,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("kind", "refresh").
			Wrap(err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry of an access token.
func (i *JWTIssuer) VerifyAccessToken(token string) (*AccessIdentity, error) {
	var claims accessClaims
	if err := i.parse(token, &claims, i.accessSecret); err != nil {
		return nil, err
	}
	if claims.Kind != tokenKindAccess {
		return nil, ErrTokenInvalid
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if !Role(claims.Role).Valid() {
		return nil, ErrTokenInvalid
	}

	return &AccessIdentity{
		UserID:    userID,
		Email:     claims.Email,
		Role:      Role(claims.Role),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
func (i *JWTIssuer) VerifyRefreshToken(token string) (*RefreshIdentity, error) {
	var claims refreshClaims
	if err := i.parse(token, &claims, i.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Kind != tokenKindRefresh {
		return nil, ErrTokenInvalid
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &RefreshIdentity{
		UserID:       userID,
		TokenVersion: claims.TokenVersion,
		TokenID:      claims.ID,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// ExpiryOf extracts the expiry claim without verifying the signature.
func (i *JWTIssuer) ExpiryOf(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}

// parse verifies the signature and registered claims against the given
// secret, mapping every failure to the two exposed error kinds.
func (i *JWTIssuer) parse(token string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
