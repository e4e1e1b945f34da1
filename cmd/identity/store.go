package identity

import (
	"context"
	"time"
)

// User is the canonical security principal. ID is the immutable integer key
// embedded in token claims; Email is cached in claims at mint time and only
// re-read from the store on login/refresh, never per verified request.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUserInput describes a user registration request.
// PasswordHash must already be a bcrypt hash; plaintext never reaches the store.
type CreateUserInput struct {
	Email        string
	FullName     string
	PasswordHash string
	Now          time.Time
}

// Store is the identity persistence boundary.
type Store interface {
	// CreateUser inserts a new user. A duplicate (normalized) email yields
	// a ConflictError with Field "email".
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetByEmail loads a user by normalized email. Missing -> ErrNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID loads a user by ID. Missing -> ErrNotFound.
	GetByID(ctx context.Context, id int64) (User, error)
}
