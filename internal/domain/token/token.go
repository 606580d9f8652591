// Package token mints the opaque credentials handed out by the gate.
//
// Conventions:
// - Tokens are never stored; every call mints a fresh value.
// - Formats are part of the wire contract and must not change.
package token

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Token format constants.
const (
	sessionPrefix = "sess_"
	proofPrefix   = "proof_"
	keyPrefix     = "KEY-"

	sessionHexLen = 8
	proofHexLen   = 12
	keyHexLen     = 6
)

// Minter produces gate tokens. It is stateless and safe for concurrent use.
type Minter struct{}

// NewMinter creates a new token minter.
func NewMinter() *Minter {
	return &Minter{}
}

// Session mints a session identifier: "sess_" + 8 lowercase hex chars.
func (m *Minter) Session() string {
	return sessionPrefix + randomHex(sessionHexLen)
}

// Proof mints a proof token: "proof_" + 12 lowercase hex chars.
func (m *Minter) Proof() string {
	return proofPrefix + randomHex(proofHexLen)
}

// Key mints an access key: "KEY-" + 6 uppercase hex chars.
func (m *Minter) Key() string {
	return keyPrefix + strings.ToUpper(randomHex(keyHexLen))
}

// randomHex returns n lowercase hex characters of fresh entropy.
// A v4 UUID carries 16 random bytes, which covers every token format here.
func randomHex(n int) string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:n]
}
