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
//  2. file (YAML) if GATED_CONFIG is set
//  3. env (prefix GATED_)
//
// A bare PORT env var is honored as a listen-address fallback when
// GATED_ADDR is not set; the port is the only knob most deployments touch.
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GATED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GATED_ADDR, GATED_COOLDOWN_SECONDS, ...
	// Map env keys like GATED_COOLDOWN_SECONDS -> cooldown_seconds (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GATED_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gated_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// PaaS-style PORT fallback, lowest priority among overrides.
	if !k.Exists("addr") && os.Getenv("PORT") != "" {
		cfg.Addr = ":" + os.Getenv("PORT")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the handful of invariants the server relies on.
func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.Checkpoints < 1:
		return fmt.Errorf("%w: checkpoints must be at least 1", ErrInvalidConfig)
	case len(cfg.Providers) == 0:
		return fmt.Errorf("%w: providers must not be empty", ErrInvalidConfig)
	case cfg.SessionTTLSeconds < 1 || cfg.CheckpointTTLSeconds < 1 || cfg.KeyTTLSeconds < 1:
		return fmt.Errorf("%w: TTLs must be positive", ErrInvalidConfig)
	case cfg.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}
