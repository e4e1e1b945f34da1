package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions in PostgreSQL via pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the user_sessions table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_sessions (
	id          TEXT PRIMARY KEY,
	user_id     BIGINT NOT NULL,
	token_hash  TEXT NOT NULL UNIQUE,
	expires_at  TIMESTAMPTZ NOT NULL,
	is_valid    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS user_sessions_user_id_idx ON user_sessions (user_id) WHERE is_valid;
CREATE INDEX IF NOT EXISTS user_sessions_expires_at_idx ON user_sessions (expires_at);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("session: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_sessions (id, user_id, token_hash, expires_at, is_valid, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5)`,
		rec.ID, rec.UserID, rec.TokenDigest, rec.ExpiresAt.UTC(), rec.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateToken
		}
		return fmt.Errorf("session: create: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByToken(ctx context.Context, digest string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, is_valid, created_at
		 FROM user_sessions WHERE token_hash = $1`,
		digest,
	).Scan(&rec.ID, &rec.UserID, &rec.TokenDigest, &rec.ExpiresAt, &rec.IsValid, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("session: get by token: %w", err)
	}
	return rec, nil
}

// InvalidateAndReplace runs the whole rotation in one transaction. The
// conditional UPDATE is the linearization point: RowsAffected tells us whether
// this caller revoked the old session, and concurrent rotations of the same
// token see zero rows and lose.
func (s *PostgresStore) InvalidateAndReplace(ctx context.Context, oldDigest string, next Record) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("session: rotate: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE user_sessions SET is_valid = FALSE
		 WHERE token_hash = $1 AND is_valid`,
		oldDigest)
	if err != nil {
		return false, fmt.Errorf("session: rotate: invalidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_sessions (id, user_id, token_hash, expires_at, is_valid, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5)`,
		next.ID, next.UserID, next.TokenDigest, next.ExpiresAt.UTC(), next.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, ErrDuplicateToken
		}
		return false, fmt.Errorf("session: rotate: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("session: rotate: commit: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Invalidate(ctx context.Context, digest string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE user_sessions SET is_valid = FALSE
		 WHERE token_hash = $1 AND is_valid`,
		digest)
	if err != nil {
		return fmt.Errorf("session: invalidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE user_sessions SET is_valid = FALSE
		 WHERE user_id = $1 AND is_valid`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("session: invalidate all: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_sessions WHERE expires_at < $1`,
		cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
