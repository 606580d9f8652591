// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// healthResponse mirrors the GET /api/health wire shape.
type healthResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Time   string `json:"time"`
}

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth handles GET /api/health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:     true,
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
