package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and database-less boots.
// It mirrors the PostgresStore contract, including conflict semantics.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]User
	byEmail map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		byID:    make(map[int64]User),
		byEmail: make(map[string]int64),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"
	norm := NormalizeEmail(in.Email)
	if norm == "" || in.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	u := User{
		ID:           s.nextID,
		Email:        norm,
		FullName:     in.FullName,
		PasswordHash: in.PasswordHash,
		CreatedAt:    in.Now.UTC(),
	}
	s.nextID++
	s.byID[u.ID] = u
	s.byEmail[norm] = u.ID
	return u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	const op = "identity.GetByEmail"
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (User, error) {
	const op = "identity.GetByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return u, nil
}
