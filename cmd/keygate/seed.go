// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/auth"
	authpg "github.com/keygate/keygate/internal/auth/postgres"
	"github.com/keygate/keygate/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	email    string
	password string
	role     string
	timeout  time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account",
		Long: `Creates the initial admin account after running any pending migrations.
This command is idempotent - it will not overwrite an existing account
with the same email.

The password is read from the KEYGATE_SEED_PASSWORD environment variable
unless --password is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address for the admin account (required)")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password for the admin account (default: KEYGATE_SEED_PASSWORD env)")
	cmd.Flags().StringVar(&cfg.role, "role", string(auth.RoleAdmin), "role for the account (admin or candidate)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.password == "" {
		cfg.password = os.Getenv("KEYGATE_SEED_PASSWORD")
	}
	if cfg.email == "" || cfg.password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--email and a password are required")
	}

	role := auth.Role(cfg.role)
	if !role.Valid() {
		return oops.Code("CONFIG_INVALID").Errorf("invalid role %q: must be %q or %q", cfg.role, auth.RoleAdmin, auth.RoleCandidate)
	}

	if err := auth.ValidateEmail(cfg.email); err != nil {
		return err
	}
	if err := auth.ValidatePassword(cfg.password); err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	if migrateErr := migrator.Up(); migrateErr != nil {
		_ = migrator.Close()
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(migrateErr)
	}
	if err := migrator.Close(); err != nil {
		cmd.PrintErrln("warning: failed to close migrator:", err)
	}

	hasher := auth.NewBcryptHasher()
	hash, err := hasher.Hash(cfg.password)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := auth.NewUser(cfg.email, hash, role)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "build account").Wrap(err)
	}

	users := authpg.NewUserRepository(pool)
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			cmd.Println("Account already exists, skipping seed")
			slog.Info("account already seeded", "email", cfg.email)
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create account").Wrap(err)
	}

	cmd.Printf("Created %s account: %s\n", role, cfg.email)
	slog.Info("created account", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return nil
}
