package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u, err := s.CreateUser(ctx, CreateUserInput{
		Email:        "  Ada@Example.COM ",
		FullName:     "Ada Lovelace",
		PasswordHash: "$2a$10$fakefakefakefakefakefa",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}

	got, err := s.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("GetByEmail returned wrong user: %+v", got)
	}

	got, err = s.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "Ada Lovelace" {
		t.Fatalf("GetByID returned wrong user: %+v", got)
	}
}

func TestMemoryStore_DuplicateEmailConflicts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	in := CreateUserInput{
		Email:        "dup@example.com",
		FullName:     "First",
		PasswordHash: "hash",
		Now:          time.Now(),
	}
	if _, err := s.CreateUser(ctx, in); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	in.Email = "DUP@example.com"
	_, err := s.CreateUser(ctx, in)
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStore_MissingUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetByEmail(ctx, "ghost@example.com"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetByID(ctx, 42); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
