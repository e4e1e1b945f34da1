package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and database-less boots.
// The single mutex makes InvalidateAndReplace atomic, mirroring the
// transactional semantics of PostgresStore.
type MemoryStore struct {
	mu       sync.Mutex
	byDigest map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byDigest: make(map[string]Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDigest[rec.TokenDigest]; exists {
		return ErrDuplicateToken
	}
	rec.IsValid = true
	s.byDigest[rec.TokenDigest] = rec
	return nil
}

func (s *MemoryStore) GetByToken(_ context.Context, digest string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDigest[digest]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) InvalidateAndReplace(_ context.Context, oldDigest string, next Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byDigest[oldDigest]
	if !ok || !old.IsValid {
		return false, nil
	}
	if _, exists := s.byDigest[next.TokenDigest]; exists {
		return false, ErrDuplicateToken
	}
	old.IsValid = false
	s.byDigest[oldDigest] = old
	next.IsValid = true
	s.byDigest[next.TokenDigest] = next
	return true, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.byDigest[digest]; ok && rec.IsValid {
		rec.IsValid = false
		s.byDigest[digest] = rec
	}
	return nil
}

func (s *MemoryStore) InvalidateAllForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for digest, rec := range s.byDigest {
		if rec.UserID == userID && rec.IsValid {
			rec.IsValid = false
			s.byDigest[digest] = rec
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for digest, rec := range s.byDigest {
		if rec.ExpiresAt.Before(cutoff) {
			delete(s.byDigest, digest)
			n++
		}
	}
	return n, nil
}
