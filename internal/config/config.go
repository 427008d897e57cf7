// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Store backend names accepted by the Store field.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory replay job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of replay workers (one season each).
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission-idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Store selects the results backend: "memory" or "postgres".
	Store string `koanf:"store"`

	// PostgresDSN is required when Store is "postgres".
	PostgresDSN string `koanf:"postgres_dsn"`
}

// New creates a Config with defaults. A season replay is cheap, so worker
// count tracks CPUs rather than multiplying them.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9090",
		QueueSize:   1024,
		WorkerCount: runtime.NumCPU(),
		DedupeSize:  10_000,
		Store:       StoreMemory,
	}
}
