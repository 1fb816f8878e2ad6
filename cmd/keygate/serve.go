// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/auth"
	authpg "github.com/keygate/keygate/internal/auth/postgres"
	"github.com/keygate/keygate/internal/config"
	"github.com/keygate/keygate/internal/logging"
	"github.com/keygate/keygate/pkg/errutil"
)

// Revocation store selection for the serve command.
const (
	revocationStoreMemory   = "memory"
	revocationStorePostgres = "postgres"
)

// shutdownTimeout bounds graceful shutdown of the observability server.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var revocationStore string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Keygate service",
		Long: `Start the Keygate service: wires the credential core to its
PostgreSQL user directory and revocation registry, and exposes metrics
and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, revocationStore, nil)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().Duration("access-token-ttl", 0, "access token lifetime")
	cmd.Flags().Duration("refresh-token-ttl", 0, "refresh token lifetime")
	cmd.Flags().Duration("prune-interval", 0, "revocation registry prune interval")
	cmd.Flags().StringVar(&revocationStore, "revocation-store", revocationStoreMemory,
		"revocation registry backend (memory or postgres)")

	return cmd
}

// loadServeConfig merges config file, flags, and environment fallbacks.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	// Environment fallbacks keep parity with the migrate and seed commands.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = os.Getenv("KEYGATE_ACCESS_SECRET")
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = os.Getenv("KEYGATE_REFRESH_SECRET")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServeWithDeps starts the service with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, revocationStore string, deps *ServeDeps) error {
	deps = deps.withDefaults()

	if revocationStore != revocationStoreMemory && revocationStore != revocationStorePostgres {
		return oops.Code("CONFIG_INVALID").
			Errorf("revocation-store must be %q or %q, got %q", revocationStoreMemory, revocationStorePostgres, revocationStore)
	}

	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("keygate", version, cfg.LogFormat)
	logger := slog.Default()

	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := deps.StoreConnector(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	hasher, err := auth.NewBcryptHasherWithCost(cfg.BcryptCost)
	if err != nil {
		return err
	}

	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	users := authpg.NewUserRepository(pool)

	var revoker auth.TokenRevoker
	if revocationStore == revocationStorePostgres {
		repo := authpg.NewRevocationRepository(pool)
		revoker = repo
		go prunePostgresRevocations(ctx, repo, cfg.PruneInterval, logger)
	} else {
		registry := auth.NewMemoryRevocationRegistry(cfg.PruneInterval)
		defer registry.Close()
		revoker = registry
	}

	svc, err := auth.NewAuthServiceWithLogger(users, hasher, issuer, revoker, logger)
	if err != nil {
		return err
	}
	if deps.OnReady != nil {
		deps.OnReady(svc)
	}

	readiness := func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	}

	obs := deps.ObservabilityServerFactory(cfg.MetricsAddr, readiness)
	obsErrCh, err := obs.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}

	logger.Info("keygate started",
		"metrics_addr", cfg.MetricsAddr,
		"revocation_store", revocationStore,
		"access_token_ttl", cfg.AccessTokenTTL,
		"refresh_token_ttl", cfg.RefreshTokenTTL,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			errutil.LogError(logger, "observability server failed", serveErr)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := obs.Stop(stopCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}

	logger.Info("keygate stopped")
	return nil
}

// prunePostgresRevocations periodically deletes expired revocation rows.
func prunePostgresRevocations(ctx context.Context, repo *authpg.RevocationRepository, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = auth.DefaultPruneInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				errutil.LogError(logger, "failed to prune revoked tokens", err)
				continue
			}
			if deleted > 0 {
				logger.Debug("pruned revoked tokens", "count", deleted)
			}
		case <-ctx.Done():
			return
		}
	}
}
