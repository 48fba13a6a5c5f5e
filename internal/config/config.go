// Package config defines service configuration structures and loading hooks.
//
// Defaults come from New. Load layers an optional YAML file and COURTSTATS_
// environment variables on top.
package config

import "time"

// Storage drivers understood by the repository factory.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver picks the backing store: memory, sqlite or postgres.
	StorageDriver string `koanf:"storage_driver"`

	// DatabaseDSN is a file path for sqlite or a connection URL for postgres.
	DatabaseDSN string `koanf:"database_dsn"`

	// DataDir holds teams.json, games.json and players.json.
	DataDir string `koanf:"data_dir"`

	// LoadOnStart imports DataDir before the server starts listening.
	LoadOnStart bool `koanf:"load_on_start"`

	// RankCacheTTLMS keeps a built rank table for this many milliseconds.
	// Zero rebuilds on every request.
	RankCacheTTLMS int `koanf:"rank_cache_ttl_ms"`

	// RankBatchSize bounds the player ids per bulk event read.
	RankBatchSize int `koanf:"rank_batch_size"`

	// MaxPlayersLimit caps GET /api/v1/players?limit.
	MaxPlayersLimit int `koanf:"max_players_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8000",
		StorageDriver:   DriverMemory,
		DataDir:         "data",
		LoadOnStart:     true,
		RankCacheTTLMS:  30_000,
		RankBatchSize:   500,
		MaxPlayersLimit: 1000,
	}
}

// RankCacheTTL returns RankCacheTTLMS as a duration.
func (c *Config) RankCacheTTL() time.Duration {
	return time.Duration(c.RankCacheTTLMS) * time.Millisecond
}
