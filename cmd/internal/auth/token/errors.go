package token

import "errors"

// Verification failures are deliberately coarse but distinct: callers log the
// precise kind while the HTTP surface collapses them into one uniform 401.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrWrongKind        = errors.New("token kind mismatch")
)

// ErrConfig reports invalid or missing codec configuration.
var ErrConfig = errors.New("token config invalid")
