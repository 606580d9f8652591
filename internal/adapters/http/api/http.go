// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	app "github.com/keelan/gated/internal/app"
	"github.com/keelan/gated/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StartSession(ctx context.Context) Session
	RefreshSession(ctx context.Context) Session
	SessionStatus(ctx context.Context, sessionID string) Status
	NextCheckpoint(ctx context.Context) Checkpoint
	CompleteCheckpoint(ctx context.Context) Completion
	VerifyProof(ctx context.Context, proofToken string) bool
	IssueKey(ctx context.Context) Key
	ValidateKey(ctx context.Context, key string) bool
	RevokeKey(ctx context.Context, key string) bool
	GateConfig(ctx context.Context) GateConfig
}

// Read shapes produced by the gate service.
type (
	Session    = app.Session
	Status     = app.Status
	Checkpoint = app.Checkpoint
	Completion = app.Completion
	Key        = app.Key
	GateConfig = app.GateConfig
)

// Server wires HTTP routes for the gate API.
type Server struct {
	healthHandler     *HealthHandler
	configHandler     *ConfigHandler
	sessionHandler    *SessionHandler
	checkpointHandler *CheckpointHandler
	keyHandler        *KeyHandler
	statsHandler      *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		configHandler:     NewConfigHandler(deps),
		sessionHandler:    NewSessionHandler(deps),
		checkpointHandler: NewCheckpointHandler(deps),
		keyHandler:        NewKeyHandler(deps),
		statsHandler:      NewStatsHandler(statsProvider),
	}
}

// Register attaches all gate routes to the router.
func (s *Server) Register(_ context.Context, r *Router) {
	r.Handle(http.MethodGet, "/api/health", MetricsMiddleware(RequestIDMiddleware(s.healthHandler.HandleHealth), "health"))
	r.Handle(http.MethodGet, "/api/config", MetricsMiddleware(RequestIDMiddleware(s.configHandler.HandleConfig), "config"))
	r.Handle(http.MethodPost, "/api/session/start", MetricsMiddleware(RequestIDMiddleware(s.sessionHandler.HandleStart), "session_start"))
	r.Handle(http.MethodGet, "/api/session/status", MetricsMiddleware(RequestIDMiddleware(s.sessionHandler.HandleStatus), "session_status"))
	r.Handle(http.MethodPost, "/api/session/refresh", MetricsMiddleware(RequestIDMiddleware(s.sessionHandler.HandleRefresh), "session_refresh"))
	r.Handle(http.MethodGet, "/api/checkpoint/next", MetricsMiddleware(RequestIDMiddleware(s.checkpointHandler.HandleNext), "checkpoint_next"))
	r.Handle(http.MethodPost, "/api/checkpoint/complete", MetricsMiddleware(RequestIDMiddleware(s.checkpointHandler.HandleComplete), "checkpoint_complete"))
	r.Handle(http.MethodPost, "/api/checkpoint/verify", MetricsMiddleware(RequestIDMiddleware(s.checkpointHandler.HandleVerify), "checkpoint_verify"))
	r.Handle(http.MethodGet, "/api/key", MetricsMiddleware(RequestIDMiddleware(s.keyHandler.HandleIssue), "key_issue"))
	r.Handle(http.MethodPost, "/api/key/validate", MetricsMiddleware(RequestIDMiddleware(s.keyHandler.HandleValidate), "key_validate"))
	r.Handle(http.MethodPost, "/api/key/revoke", MetricsMiddleware(RequestIDMiddleware(s.keyHandler.HandleRevoke), "key_revoke"))
	r.Handle(http.MethodGet, "/api/stats", MetricsMiddleware(RequestIDMiddleware(s.statsHandler.HandleStats), "stats"))

	// Prometheus exposition from the custom registry.
	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP)
}

// errorResponse is the envelope for every non-2xx body.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the error envelope. The message is the wire contract;
// internal detail stays in logs, never in the body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{OK: false, Error: message})
}

// decodeBody parses a JSON object body. A malformed or absent body yields
// an empty map so field presence checks produce the field-specific error.
func decodeBody(r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return map[string]any{}, false
	}
	if body == nil {
		return map[string]any{}, false
	}
	return body, true
}

// stringField extracts a non-empty string field from a decoded body.
func stringField(body map[string]any, name string) (string, bool) {
	v, ok := body[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
