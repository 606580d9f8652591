// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// CheckpointDependencies defines the interface for checkpoint operations.
type CheckpointDependencies interface {
	NextCheckpoint(ctx context.Context) Checkpoint
	CompleteCheckpoint(ctx context.Context) Completion
	VerifyProof(ctx context.Context, proofToken string) bool
}

// nextResponse mirrors the GET /api/checkpoint/next wire shape.
type nextResponse struct {
	OK         bool   `json:"ok"`
	Checkpoint int    `json:"checkpoint"`
	Provider   string `json:"provider"`
	ProofToken string `json:"proofToken"`
}

// completeResponse mirrors the POST /api/checkpoint/complete wire shape.
// The request body is echoed back untouched.
type completeResponse struct {
	OK             bool           `json:"ok"`
	Received       map[string]any `json:"received"`
	NextCheckpoint int            `json:"nextCheckpoint"`
	NextURL        string         `json:"nextUrl"`
	ExpiresIn      int            `json:"expiresIn"`
}

// verifyResponse mirrors the POST /api/checkpoint/verify wire shape.
type verifyResponse struct {
	OK         bool   `json:"ok"`
	Verified   bool   `json:"verified"`
	ProofToken string `json:"proofToken"`
}

// CheckpointHandler handles checkpoint requests.
type CheckpointHandler struct {
	deps CheckpointDependencies
}

// NewCheckpointHandler creates a new checkpoint handler.
func NewCheckpointHandler(deps CheckpointDependencies) *CheckpointHandler {
	return &CheckpointHandler{deps: deps}
}

// HandleNext handles GET /api/checkpoint/next requests.
func (h *CheckpointHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	cp := h.deps.NextCheckpoint(r.Context())
	writeJSON(w, http.StatusOK, nextResponse{
		OK:         true,
		Checkpoint: cp.Number,
		Provider:   cp.Provider,
		ProofToken: cp.ProofToken,
	})
}

// HandleComplete handles POST /api/checkpoint/complete requests.
func (h *CheckpointHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrInvalidBody.Error())
		return
	}
	done := h.deps.CompleteCheckpoint(r.Context())
	writeJSON(w, http.StatusOK, completeResponse{
		OK:             true,
		Received:       body,
		NextCheckpoint: done.NextCheckpoint,
		NextURL:        done.NextURL,
		ExpiresIn:      done.ExpiresIn,
	})
}

// HandleVerify handles POST /api/checkpoint/verify requests.
// A malformed body counts as an absent proofToken.
func (h *CheckpointHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	body, _ := decodeBody(r)
	proofToken, ok := stringField(body, "proofToken")
	if !ok {
		writeError(w, http.StatusBadRequest, "proofToken is required")
		return
	}
	verified := h.deps.VerifyProof(r.Context(), proofToken)
	writeJSON(w, http.StatusOK, verifyResponse{
		OK:         true,
		Verified:   verified,
		ProofToken: proofToken,
	})
}
