package session

import (
	"context"
	"time"
)

// Record is one refresh-token session row. TokenDigest is the hex digest of
// the refresh JWT, never the JWT itself; a database leak must not hand out
// usable credentials. IsValid is the single source of truth for revocation:
// rotation and logout flip it to false, rows are never deleted on revoke.
type Record struct {
	ID          string
	UserID      int64
	TokenDigest string
	ExpiresAt   time.Time
	IsValid     bool
	CreatedAt   time.Time
}

// Store is the session persistence boundary.
type Store interface {
	// Create inserts a new valid session. A duplicate digest -> ErrDuplicateToken.
	Create(ctx context.Context, rec Record) error

	// GetByToken loads a session by refresh-token digest regardless of
	// validity or expiry; callers decide how to report stale rows.
	// Missing -> ErrNotFound.
	GetByToken(ctx context.Context, digest string) (Record, error)

	// InvalidateAndReplace atomically invalidates the session identified by
	// oldDigest and inserts next, but only if the old session is still valid.
	// Returns false (and no error) when the old session was already invalid
	// or absent; under concurrent rotation exactly one caller wins.
	InvalidateAndReplace(ctx context.Context, oldDigest string, next Record) (bool, error)

	// Invalidate marks the session with this digest invalid. Idempotent:
	// absent or already-invalid sessions are not an error.
	Invalidate(ctx context.Context, digest string) error

	// InvalidateAllForUser marks every valid session of the user invalid and
	// returns how many rows were flipped.
	InvalidateAllForUser(ctx context.Context, userID int64) (int64, error)

	// DeleteExpired removes rows whose ExpiresAt is before cutoff. This is
	// hygiene only; expiry enforcement never depends on it.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
