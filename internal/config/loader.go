package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "COURTSTATS_"
	envFileVar = "COURTSTATS_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COURTSTATS_CONFIG is set
//  3. env (prefix COURTSTATS_), after .env is merged into the process env
func Load(_ context.Context) (*Config, error) {
	// Variables already set in the process win over .env.
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotEnvFile, err)
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// COURTSTATS_RANK_BATCH_SIZE -> rank_batch_size (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("%w: database_dsn is required for %s", ErrInvalidConfig, c.StorageDriver)
		}
	default:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.RankCacheTTLMS < 0 {
		return fmt.Errorf("%w: rank_cache_ttl_ms must not be negative", ErrInvalidConfig)
	}
	if c.RankBatchSize <= 0 {
		return fmt.Errorf("%w: rank_batch_size must be positive", ErrInvalidConfig)
	}
	if c.MaxPlayersLimit <= 0 {
		return fmt.Errorf("%w: max_players_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
