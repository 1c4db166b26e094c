package auth

import "errors"

// Missing and wrong keys both map to UNAUTHENTICATED; the message does not
// say which one failed beyond what the caller already knows.
var (
	ErrMissingKey = errors.New("API key required in x-api-key metadata")
	ErrInvalidKey = errors.New("invalid API key")
)
