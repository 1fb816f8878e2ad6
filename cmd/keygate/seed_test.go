// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/pkg/errutil"
)

func TestNewSeedCmd(t *testing.T) {
	cmd := NewSeedCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "seed", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.RunE)
}

func TestNewSeedCmd_Flags(t *testing.T) {
	cmd := NewSeedCmd()

	role, err := cmd.Flags().GetString("role")
	require.NoError(t, err)
	assert.Equal(t, "admin", role, "default role should be admin")

	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout, "default timeout should be 30s")
}

func TestRunSeed_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd, _ := newTestCmd()

	cfg := &seedConfig{email: "admin@example.com", password: "Sup3rSecret", role: "admin", timeout: time.Second}
	err := runSeed(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestRunSeed_MissingCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/keygate_test")
	t.Setenv("KEYGATE_SEED_PASSWORD", "")

	tests := []struct {
		name string
		cfg  *seedConfig
	}{
		{name: "missing email", cfg: &seedConfig{password: "Sup3rSecret", role: "admin", timeout: time.Second}},
		{name: "missing password", cfg: &seedConfig{email: "admin@example.com", role: "admin", timeout: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCmd()
			err := runSeed(cmd, nil, tt.cfg)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}

func TestRunSeed_PasswordFromEnv(t *testing.T) {
	// The env password feeds validation; a weak one is rejected before any
	// database work.
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/keygate_test")
	t.Setenv("KEYGATE_SEED_PASSWORD", "weak")
	cmd, _ := newTestCmd()

	cfg := &seedConfig{email: "admin@example.com", role: "admin", timeout: time.Second}
	err := runSeed(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_WEAK_PASSWORD")
}

func TestRunSeed_InvalidRole(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/keygate_test")
	cmd, _ := newTestCmd()

	cfg := &seedConfig{email: "admin@example.com", password: "Sup3rSecret", role: "root", timeout: time.Second}
	err := runSeed(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Contains(t, err.Error(), "invalid role")
}

func TestRunSeed_InvalidEmail(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/keygate_test")
	cmd, _ := newTestCmd()

	cfg := &seedConfig{email: "not-an-email", password: "Sup3rSecret", role: "admin", timeout: time.Second}
	err := runSeed(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
}
