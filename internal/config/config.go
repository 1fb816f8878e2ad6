// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

// Package config loads Keygate configuration from a YAML file and
// command-line flags. Flags override file values.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/keygate/keygate/internal/auth"
)

// Config holds the full service configuration. Secrets are values only;
// where they come from (file, env interpolation, secret manager) is the
// deployment's concern.
type Config struct {
	DatabaseURL        string        `koanf:"database_url"`
	MetricsAddr        string        `koanf:"metrics_addr"`
	LogFormat          string        `koanf:"log_format"`
	AccessTokenSecret  string        `koanf:"access_token_secret"`
	RefreshTokenSecret string        `koanf:"refresh_token_secret"`
	AccessTokenTTL     time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `koanf:"refresh_token_ttl"`
	BcryptCost         int           `koanf:"bcrypt_cost"`
	PruneInterval      time.Duration `koanf:"prune_interval"`
}

// Default returns the configuration defaults applied before any file or
// flag values.
func Default() Config {
	return Config{
		MetricsAddr:     "127.0.0.1:9100",
		LogFormat:       "json",
		AccessTokenTTL:  auth.DefaultAccessTokenTTL,
		RefreshTokenTTL: auth.DefaultRefreshTokenTTL,
		BcryptCost:      auth.BcryptCost,
		PruneInterval:   auth.DefaultPruneInterval,
	}
}

// Load reads configuration from an optional YAML file, then overlays any
// flags that were set. Either source may be absent.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return flagToKey(f.Name), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if c.AccessTokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("access_token_secret is required")
	}
	if c.RefreshTokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("refresh_token_secret is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.AccessTokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("access_token_ttl must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("refresh_token_ttl must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return oops.Code("CONFIG_INVALID").Errorf("access_token_ttl must be shorter than refresh_token_ttl")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return oops.Code("CONFIG_INVALID").Errorf("bcrypt_cost must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// flagToKey converts a flag name like "metrics-addr" to the config key
// "metrics_addr".
func flagToKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
