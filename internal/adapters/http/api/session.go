// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	StartSession(ctx context.Context) Session
	RefreshSession(ctx context.Context) Session
	SessionStatus(ctx context.Context, sessionID string) Status
}

// startResponse mirrors the POST /api/session/start wire shape.
type startResponse struct {
	OK             bool   `json:"ok"`
	SessionID      string `json:"sessionId"`
	NextCheckpoint int    `json:"nextCheckpoint"`
	ExpiresIn      int    `json:"expiresIn"`
}

// statusResponse mirrors the GET /api/session/status wire shape.
type statusResponse struct {
	OK         bool   `json:"ok"`
	SessionID  string `json:"sessionId"`
	Checkpoint int    `json:"checkpoint"`
	Completed  bool   `json:"completed"`
}

// refreshResponse mirrors the POST /api/session/refresh wire shape.
type refreshResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
	ExpiresIn int    `json:"expiresIn"`
}

// SessionHandler handles session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleStart handles POST /api/session/start requests.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.StartSession(r.Context())
	writeJSON(w, http.StatusOK, startResponse{
		OK:             true,
		SessionID:      sess.ID,
		NextCheckpoint: sess.NextCheckpoint,
		ExpiresIn:      sess.ExpiresIn,
	})
}

// HandleStatus handles GET /api/session/status?sessionId=... requests.
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	st := h.deps.SessionStatus(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, statusResponse{
		OK:         true,
		SessionID:  st.SessionID,
		Checkpoint: st.Checkpoint,
		Completed:  st.Completed,
	})
}

// HandleRefresh handles POST /api/session/refresh requests.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.RefreshSession(r.Context())
	writeJSON(w, http.StatusOK, refreshResponse{
		OK:        true,
		SessionID: sess.ID,
		ExpiresIn: sess.ExpiresIn,
	})
}
