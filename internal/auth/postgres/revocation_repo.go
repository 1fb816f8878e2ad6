// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/keygate/keygate/internal/auth"
)

// RevocationRepository implements auth.TokenRevoker using PostgreSQL.
// It backs multi-process deployments where an in-memory registry would
// leave a revoked token valid on other instances.
type RevocationRepository struct {
	db db
}

// NewRevocationRepository creates a new RevocationRepository.
func NewRevocationRepository(db db) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Invalidate records a token ID as revoked until expiresAt. The upsert is
// atomic; concurrent revocations of the same token keep the later expiry.
func (r *RevocationRepository) Invalidate(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return oops.Code("AUTH_REVOKE_FAILED").Errorf("token ID cannot be empty")
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO revoked_tokens (token_id, expires_at, revoked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token_id) DO UPDATE
		SET expires_at = GREATEST(revoked_tokens.expires_at, EXCLUDED.expires_at)
	`, tokenID, expiresAt)
	if err != nil {
		return oops.Code("AUTH_REVOKE_FAILED").
			With("operation", "upsert revoked token").
			Wrap(err)
	}
	return nil
}

// IsInvalidated reports whether the token ID has been revoked and its
// natural expiry has not yet passed.
func (r *RevocationRepository) IsInvalidated(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx, `
		SELECT TRUE FROM revoked_tokens
		WHERE token_id = $1 AND expires_at > NOW()
	`, tokenID).Scan(&revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("AUTH_REVOCATION_CHECK_FAILED").
			With("operation", "query revoked token").
			Wrap(err)
	}
	return revoked, nil
}

// DeleteExpired removes entries whose natural expiry has passed and
// returns the count of deleted records. Run periodically to bound table
// growth; an expired token fails verification regardless.
func (r *RevocationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= NOW()
	`)
	if err != nil {
		return 0, oops.Code("AUTH_REVOCATION_PRUNE_FAILED").
			With("operation", "delete expired revocations").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.TokenRevoker = (*RevocationRepository)(nil)
