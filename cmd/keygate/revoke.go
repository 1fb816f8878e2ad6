// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/auth"
	authpg "github.com/keygate/keygate/internal/auth/postgres"
	"github.com/keygate/keygate/internal/store"
)

// Default timeout for revoke command.
const defaultRevokeTimeout = 10 * time.Second

// NewRevokeCmd creates the revoke subcommand.
func NewRevokeCmd() *cobra.Command {
	var (
		email   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Invalidate all refresh tokens for an account",
		Long: `Bumps the account's token version so every previously issued
refresh token stops working. Outstanding access tokens remain valid
until they expire.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRevoke(cmd, email, timeout)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the account (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultRevokeTimeout, "timeout for database operations")

	return cmd
}

func runRevoke(cmd *cobra.Command, email string, timeout time.Duration) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	if email == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--email is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return oops.Code("USER_NOT_FOUND").With("email", email).Errorf("no account with that email")
		}
		return oops.Code("REVOKE_FAILED").With("operation", "look up account").Wrap(err)
	}

	version, err := users.BumpTokenVersion(ctx, user.ID)
	if err != nil {
		return oops.Code("REVOKE_FAILED").With("operation", "bump token version").Wrap(err)
	}

	cmd.Printf("Revoked refresh tokens for %s (token version now %d)\n", email, version)
	return nil
}
