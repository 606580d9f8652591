// Package gateprobe walks the full gate flow against a running server and
// verifies every response shape. It is a smoke tool, not a unit test: it
// exercises the wire contract end to end.
package gateprobe

import "time"

// Default probe settings.
const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 10 * time.Second
)

// Config holds the probe settings.
type Config struct {
	// BaseURL is the root of the gate server under probe.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Verbose logs every response body, not just failures.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}
