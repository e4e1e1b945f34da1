package auth

import "errors"

// Service-level failures the API layer maps to status codes. Refresh failures
// are deliberately split three ways for logging and metrics even though the
// HTTP surface answers all of them with the same 401.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrSessionRevoked      = errors.New("session revoked")
	ErrSessionExpired      = errors.New("session expired")
)
