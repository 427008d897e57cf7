package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KORM_CONFIG is set
//  3. env (prefix KORM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("KORM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: KORM_ADDR, KORM_QUEUE_SIZE, ...
	// Keys map to the flat koanf tags on the struct, underscores preserved.
	envProvider := env.Provider("KORM_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "korm_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: postgres store requires postgres_dsn", ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, cfg.Store)
	}
	return &cfg, nil
}
