// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/keygate/keygate/internal/auth"
	"github.com/keygate/keygate/internal/auth/postgres"
	"github.com/keygate/keygate/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container and applies the
// schema migrations.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("keygate_test"),
		tcpostgres.WithUsername("keygate"),
		tcpostgres.WithPassword("keygate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

// newStoredUser inserts a user through the repository and returns it.
func newStoredUser(ctx context.Context, repo *postgres.UserRepository, email string) (*auth.User, error) {
	user, err := auth.NewUser(email, "$2a$12$integrationhash", auth.RoleCandidate)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

var _ = Describe("UserRepository", func() {
	var (
		pool    *pgxpool.Pool
		cleanup func()
		repo    *postgres.UserRepository
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewUserRepository(pool)
		ctx = context.Background()
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Create and FindByEmail", func() {
		It("round-trips a user record", func() {
			user, err := newStoredUser(ctx, repo, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.FindByEmail(ctx, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(user.ID))
			Expect(got.Email).To(Equal("alice@example.com"))
			Expect(got.Role).To(Equal(auth.RoleCandidate))
			Expect(got.IsActive).To(BeTrue())
			Expect(got.TokenVersion).To(Equal(0))
			Expect(got.LastLoginAt).To(BeNil())
		})

		It("matches email case-insensitively", func() {
			user, err := newStoredUser(ctx, repo, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.FindByEmail(ctx, "ALICE@Example.COM")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(user.ID))
		})

		It("rejects a duplicate email regardless of case", func() {
			_, err := newStoredUser(ctx, repo, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())

			dup, err := auth.NewUser("Alice@Example.com", "$2a$12$otherhash", auth.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			err = repo.Create(ctx, dup)
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("returns ErrNotFound for an unknown email", func() {
			_, err := repo.FindByEmail(ctx, "nobody@example.com")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("FindByID", func() {
		It("retrieves a stored user", func() {
			user, err := newStoredUser(ctx, repo, "bob@example.com")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.FindByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal("bob@example.com"))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := repo.FindByID(ctx, ulid.Make())
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("UpdateLastLogin", func() {
		It("records the login timestamp", func() {
			user, err := newStoredUser(ctx, repo, "carol@example.com")
			Expect(err).NotTo(HaveOccurred())

			at := time.Now().UTC().Truncate(time.Microsecond)
			Expect(repo.UpdateLastLogin(ctx, user.ID, at)).To(Succeed())

			got, err := repo.FindByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.LastLoginAt).NotTo(BeNil())
			Expect(got.LastLoginAt.UTC()).To(BeTemporally("~", at, time.Millisecond))
		})

		It("returns ErrNotFound for an unknown id", func() {
			err := repo.UpdateLastLogin(ctx, ulid.Make(), time.Now())
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("BumpTokenVersion", func() {
		It("increments the version on each call", func() {
			user, err := newStoredUser(ctx, repo, "dave@example.com")
			Expect(err).NotTo(HaveOccurred())

			version, err := repo.BumpTokenVersion(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(1))

			version, err = repo.BumpTokenVersion(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(2))

			got, err := repo.FindByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TokenVersion).To(Equal(2))
		})
	})
})

var _ = Describe("RevocationRepository", func() {
	var (
		pool    *pgxpool.Pool
		cleanup func()
		repo    *postgres.RevocationRepository
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewRevocationRepository(pool)
		ctx = context.Background()
	})

	AfterEach(func() {
		cleanup()
	})

	It("records and reports revocations", func() {
		tokenID := ulid.Make().String()

		revoked, err := repo.IsInvalidated(ctx, tokenID)
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeFalse())

		Expect(repo.Invalidate(ctx, tokenID, time.Now().Add(time.Hour))).To(Succeed())

		revoked, err = repo.IsInvalidated(ctx, tokenID)
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeTrue())
	})

	It("treats an entry past its expiry as no longer revoked", func() {
		tokenID := ulid.Make().String()
		Expect(repo.Invalidate(ctx, tokenID, time.Now().Add(-time.Minute))).To(Succeed())

		revoked, err := repo.IsInvalidated(ctx, tokenID)
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeFalse())
	})

	It("keeps the later expiry on duplicate revocations", func() {
		tokenID := ulid.Make().String()
		later := time.Now().Add(time.Hour)

		Expect(repo.Invalidate(ctx, tokenID, later)).To(Succeed())
		Expect(repo.Invalidate(ctx, tokenID, time.Now().Add(time.Minute))).To(Succeed())

		var stored time.Time
		err := pool.QueryRow(ctx, `SELECT expires_at FROM revoked_tokens WHERE token_id = $1`, tokenID).Scan(&stored)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.UTC()).To(BeTemporally("~", later, time.Millisecond))
	})

	It("deletes only expired entries", func() {
		expired := ulid.Make().String()
		live := ulid.Make().String()

		Expect(repo.Invalidate(ctx, expired, time.Now().Add(-time.Minute))).To(Succeed())
		Expect(repo.Invalidate(ctx, live, time.Now().Add(time.Hour))).To(Succeed())

		deleted, err := repo.DeleteExpired(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeEquivalentTo(1))

		revoked, err := repo.IsInvalidated(ctx, live)
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeTrue())
	})
})
