// Package service provides the core gate service that implements
// the dependencies required by the HTTP API.
//
// The gate is deliberately non-enforcing: every operation mints fresh
// values or echoes its input. Nothing is retained between calls, so the
// service holds configuration and counters only.
package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/keelan/gated/internal/domain/token"
	"github.com/keelan/gated/pkg/logger"
	"github.com/keelan/gated/pkg/metrics"
)

// Default gate configuration constants.
const (
	defaultCheckpoints   = 3
	defaultCooldown      = 900
	defaultSessionTTL    = 600
	defaultCheckpointTTL = 120
	defaultKeyTTL        = 900

	// The mock never advances: every status reports checkpoint 1.
	currentCheckpoint = 1
)

// Session describes a freshly minted session grant.
type Session struct {
	ID             string
	NextCheckpoint int
	ExpiresIn      int
}

// Status describes the canned state reported for any session id.
type Status struct {
	SessionID  string
	Checkpoint int
	Completed  bool
}

// Checkpoint describes the next checkpoint challenge.
type Checkpoint struct {
	Number     int
	Provider   string
	ProofToken string
}

// Completion describes the canned result of completing a checkpoint.
type Completion struct {
	NextCheckpoint int
	NextURL        string
	ExpiresIn      int
}

// Key describes a freshly minted access key.
type Key struct {
	Value     string
	ExpiresIn int
}

// GateConfig is the advertised gate shape served by /api/config.
type GateConfig struct {
	Checkpoints     int
	CooldownSeconds int
	Providers       []string
}

// Service implements the API dependencies for the gate.
type Service struct {
	minter *token.Minter

	// Configuration
	checkpoints   int
	cooldown      int
	providers     []string
	sessionTTL    int
	checkpointTTL int
	keyTTL        int

	// Issuance counters (the only state the gate keeps)
	sessionsIssued atomic.Int64
	proofsIssued   atomic.Int64
	keysIssued     atomic.Int64
	startedAt      time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCheckpoints sets the advertised checkpoint count.
func WithCheckpoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.checkpoints = n
		}
	}
}

// WithCooldown sets the advertised cooldown in seconds.
func WithCooldown(seconds int) Option {
	return func(s *Service) {
		if seconds >= 0 {
			s.cooldown = seconds
		}
	}
}

// WithProviders sets the advertised checkpoint providers. The first entry
// is the provider named by NextCheckpoint.
func WithProviders(providers []string) Option {
	return func(s *Service) {
		if len(providers) > 0 {
			s.providers = providers
		}
	}
}

// WithSessionTTL sets the advertised session lifetime in seconds.
func WithSessionTTL(seconds int) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.sessionTTL = seconds
		}
	}
}

// WithCheckpointTTL sets the advertised checkpoint completion window in seconds.
func WithCheckpointTTL(seconds int) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.checkpointTTL = seconds
		}
	}
}

// WithKeyTTL sets the advertised key lifetime in seconds.
func WithKeyTTL(seconds int) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.keyTTL = seconds
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		minter:        token.NewMinter(),
		checkpoints:   defaultCheckpoints,
		cooldown:      defaultCooldown,
		providers:     []string{"shortlink", "captcha", "timer"},
		sessionTTL:    defaultSessionTTL,
		checkpointTTL: defaultCheckpointTTL,
		keyTTL:        defaultKeyTTL,
		startedAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession mints a new session. Nothing is recorded; the id is handed
// out and forgotten.
func (s *Service) StartSession(ctx context.Context) Session {
	id := s.minter.Session()
	s.sessionsIssued.Add(1)
	metrics.RecordSessionIssued()
	if s.logger != nil {
		s.logger.Debug(ctx, "session minted", logger.String("sessionId", id))
	}
	return Session{ID: id, NextCheckpoint: currentCheckpoint, ExpiresIn: s.sessionTTL}
}

// RefreshSession mints a replacement session id. The previous id is not
// consulted because none was kept.
func (s *Service) RefreshSession(ctx context.Context) Session {
	id := s.minter.Session()
	s.sessionsIssued.Add(1)
	metrics.RecordSessionIssued()
	if s.logger != nil {
		s.logger.Debug(ctx, "session refreshed", logger.String("sessionId", id))
	}
	return Session{ID: id, NextCheckpoint: currentCheckpoint, ExpiresIn: s.sessionTTL}
}

// SessionStatus reports the canned status for any session id.
func (s *Service) SessionStatus(_ context.Context, sessionID string) Status {
	return Status{SessionID: sessionID, Checkpoint: currentCheckpoint, Completed: false}
}

// NextCheckpoint mints a proof token for the (always first) checkpoint.
func (s *Service) NextCheckpoint(ctx context.Context) Checkpoint {
	proof := s.minter.Proof()
	s.proofsIssued.Add(1)
	metrics.RecordProofIssued()
	if s.logger != nil {
		s.logger.Debug(ctx, "proof minted", logger.String("proofToken", proof))
	}
	return Checkpoint{Number: currentCheckpoint, Provider: s.providers[0], ProofToken: proof}
}

// CompleteCheckpoint reports the canned advancement to checkpoint 2.
func (s *Service) CompleteCheckpoint(_ context.Context) Completion {
	next := currentCheckpoint + 1
	return Completion{
		NextCheckpoint: next,
		NextURL:        fmt.Sprintf("/checkpoint/%d", next),
		ExpiresIn:      s.checkpointTTL,
	}
}

// VerifyProof accepts any proof token. There is no issuance record to
// check against.
func (s *Service) VerifyProof(_ context.Context, _ string) bool {
	return true
}

// IssueKey mints a new access key.
func (s *Service) IssueKey(ctx context.Context) Key {
	key := s.minter.Key()
	s.keysIssued.Add(1)
	metrics.RecordKeyIssued()
	if s.logger != nil {
		s.logger.Debug(ctx, "key minted", logger.String("key", key))
	}
	return Key{Value: key, ExpiresIn: s.keyTTL}
}

// ValidateKey accepts any key.
func (s *Service) ValidateKey(_ context.Context, _ string) bool {
	return true
}

// RevokeKey accepts any key. Revocation is a no-op.
func (s *Service) RevokeKey(_ context.Context, _ string) bool {
	return true
}

// GateConfig returns the advertised gate shape.
func (s *Service) GateConfig(_ context.Context) GateConfig {
	return GateConfig{
		Checkpoints:     s.checkpoints,
		CooldownSeconds: s.cooldown,
		Providers:       s.providers,
	}
}

// GetStats returns issuance counters for the metrics updater and /metrics.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"sessionsIssued": int(s.sessionsIssued.Load()),
		"proofsIssued":   int(s.proofsIssued.Load()),
		"keysIssued":     int(s.keysIssued.Load()),
		"uptimeSeconds":  int(time.Since(s.startedAt).Seconds()),
	}
}
