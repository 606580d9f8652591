// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// KeyDependencies defines the interface for key operations.
type KeyDependencies interface {
	IssueKey(ctx context.Context) Key
	ValidateKey(ctx context.Context, key string) bool
	RevokeKey(ctx context.Context, key string) bool
}

// issueResponse mirrors the GET /api/key wire shape.
type issueResponse struct {
	OK        bool   `json:"ok"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// validateResponse mirrors the POST /api/key/validate wire shape.
type validateResponse struct {
	OK    bool   `json:"ok"`
	Valid bool   `json:"valid"`
	Key   string `json:"key"`
}

// revokeResponse mirrors the POST /api/key/revoke wire shape.
type revokeResponse struct {
	OK      bool   `json:"ok"`
	Revoked bool   `json:"revoked"`
	Key     string `json:"key"`
}

// KeyHandler handles key requests.
type KeyHandler struct {
	deps KeyDependencies
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(deps KeyDependencies) *KeyHandler {
	return &KeyHandler{deps: deps}
}

// HandleIssue handles GET /api/key requests.
func (h *KeyHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	key := h.deps.IssueKey(r.Context())
	writeJSON(w, http.StatusOK, issueResponse{
		OK:        true,
		Key:       key.Value,
		ExpiresIn: key.ExpiresIn,
	})
}

// HandleValidate handles POST /api/key/validate requests.
// A malformed body counts as an absent key.
func (h *KeyHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, _ := decodeBody(r)
	key, ok := stringField(body, "key")
	if !ok {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	valid := h.deps.ValidateKey(r.Context(), key)
	writeJSON(w, http.StatusOK, validateResponse{OK: true, Valid: valid, Key: key})
}

// HandleRevoke handles POST /api/key/revoke requests.
// A malformed body counts as an absent key.
func (h *KeyHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	body, _ := decodeBody(r)
	key, ok := stringField(body, "key")
	if !ok {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	revoked := h.deps.RevokeKey(r.Context(), key)
	writeJSON(w, http.StatusOK, revokeResponse{OK: true, Revoked: revoked, Key: key})
}
