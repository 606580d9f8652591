package api

import "errors"

// Sentinel kinds for API errors. The strings double as the wire messages
// the contract promises, so they must not change.
var (
	ErrNotFound    = errors.New("Not found")
	ErrInternal    = errors.New("Internal server error")
	ErrInvalidBody = errors.New("invalid JSON body")
)
