// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() returning a Config populated with defaults.
// - Load(...) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// Checkpoints is the number of checkpoints advertised by /api/config.
	Checkpoints int `koanf:"checkpoints"`

	// CooldownSeconds is the advertised cooldown between gate attempts.
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// Providers lists the checkpoint providers advertised by /api/config.
	// The first entry is the provider named by /api/checkpoint/next.
	Providers []string `koanf:"providers"`

	// SessionTTLSeconds is the advertised lifetime of a minted session.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// CheckpointTTLSeconds is the advertised window for completing a checkpoint.
	CheckpointTTLSeconds int `koanf:"checkpoint_ttl_seconds"`

	// KeyTTLSeconds is the advertised lifetime of a minted key.
	KeyTTLSeconds int `koanf:"key_ttl_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":3000",
		Checkpoints:          3,
		CooldownSeconds:      900,
		Providers:            []string{"shortlink", "captcha", "timer"},
		SessionTTLSeconds:    600,
		CheckpointTTLSeconds: 120,
		KeyTTLSeconds:        900,
	}
}
