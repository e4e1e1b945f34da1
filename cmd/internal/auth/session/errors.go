package session

import "errors"

var (
	ErrNotFound       = errors.New("session not found")
	ErrDuplicateToken = errors.New("duplicate refresh token")
)
