// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// ConfigDependencies defines the interface for gate configuration reads.
type ConfigDependencies interface {
	GateConfig(ctx context.Context) GateConfig
}

// configResponse mirrors the GET /api/config wire shape.
type configResponse struct {
	OK              bool     `json:"ok"`
	Checkpoints     int      `json:"checkpoints"`
	CooldownSeconds int      `json:"cooldownSeconds"`
	Providers       []string `json:"providers"`
}

// ConfigHandler handles gate configuration requests.
type ConfigHandler struct {
	deps ConfigDependencies
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(deps ConfigDependencies) *ConfigHandler {
	return &ConfigHandler{deps: deps}
}

// HandleConfig handles GET /api/config requests.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.deps.GateConfig(r.Context())
	writeJSON(w, http.StatusOK, configResponse{
		OK:              true,
		Checkpoints:     cfg.Checkpoints,
		CooldownSeconds: cfg.CooldownSeconds,
		Providers:       cfg.Providers,
	})
}
