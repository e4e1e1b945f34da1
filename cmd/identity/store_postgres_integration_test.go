package identity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func testPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("CREDO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CREDO_TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users`)
	})
	return s
}

func TestPostgresStore_CreateGetConflict(t *testing.T) {
	s := testPostgresStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{
		Email:        "PG@Example.com",
		FullName:     "Postgres User",
		PasswordHash: "hash",
		Now:          time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.Email != "pg@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	got, err := s.GetByEmail(ctx, "pg@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: %+v, %v", got, err)
	}
	got, err = s.GetByID(ctx, u.ID)
	if err != nil || got.Email != u.Email {
		t.Fatalf("GetByID: %+v, %v", got, err)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Email:        "pg@EXAMPLE.com",
		FullName:     "Dup",
		PasswordHash: "hash2",
		Now:          time.Now(),
	})
	if !IsConflict(err) {
		t.Fatalf("want conflict on duplicate email, got %v", err)
	}

	if _, err := s.GetByEmail(ctx, "absent@example.com"); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}
