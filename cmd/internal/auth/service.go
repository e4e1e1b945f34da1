package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"credo/cmd/identity"
	"credo/cmd/internal/auth/session"
	"credo/cmd/internal/auth/token"
	"credo/cmd/security/password"
	sectoken "credo/cmd/security/token"
)

// TokenPair is the result of login and refresh: a short-lived access token
// and the single-use refresh token that replaces it.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	UserID           int64
}

// Service implements the credential operations over pluggable stores.
type Service struct {
	users    identity.Store
	sessions session.Store
	codec    *token.Codec
	hasher   *sectoken.Hasher
	log      *slog.Logger

	// dummyHash keeps login cost uniform when the email is unknown.
	dummyHash string
	now       func() time.Time
}

// NewService wires the service. It precomputes the decoy bcrypt hash so
// unknown-email logins burn the same work as real ones, and captures the
// digest key once so stored digests stay stable for the process lifetime.
func NewService(users identity.Store, sessions session.Store, codec *token.Codec, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	dummy, err := password.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("auth: precompute dummy hash: %w", err)
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		codec:     codec,
		hasher:    sectoken.NewHasherFromEnv(),
		log:       log,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// WithNow returns a copy of the service with an overridden clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Signup registers a new user and opens their first session, so a fresh
// account is signed in without a separate login round trip. The email is
// normalized before storage; a duplicate maps to ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, email, fullName, plain string) (identity.User, TokenPair, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}
	u, err := s.users.CreateUser(ctx, identity.CreateUserInput{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Now:          s.now(),
	})
	if err != nil {
		if identity.IsConflict(err) {
			return identity.User{}, TokenPair{}, ErrEmailTaken
		}
		return identity.User{}, TokenPair{}, err
	}

	pair, rec, err := s.mintPair(u.ID, u.Email)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return identity.User{}, TokenPair{}, fmt.Errorf("auth: open session: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "session_id", rec.ID)
	return u, pair, nil
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password are indistinguishable to the caller, in timing as well as in
// result: the unknown-email path still runs a full bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, plain string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			password.Verify(s.dummyHash, plain)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !password.Verify(u.PasswordHash, plain) {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, rec, err := s.mintPair(u.ID, u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return TokenPair{}, fmt.Errorf("auth: open session: %w", err)
	}
	s.log.InfoContext(ctx, "login", "user_id", u.ID, "session_id", rec.ID)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is retired and a fresh
// pair is issued, atomically. A token that loses the rotation race, or one
// presented after rotation, maps to ErrSessionRevoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		s.log.WarnContext(ctx, "refresh token rejected", "reason", err.Error())
		return TokenPair{}, ErrInvalidRefreshToken
	}

	digest := s.hasher.Digest(refreshToken)
	rec, err := s.sessions.GetByToken(ctx, digest)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if !rec.IsValid {
		return TokenPair{}, ErrSessionRevoked
	}
	// The expiry instant itself counts as expired.
	if !rec.ExpiresAt.After(s.now()) {
		return TokenPair{}, ErrSessionExpired
	}

	pair, next, err := s.mintPair(claims.UserID, claims.Email)
	if err != nil {
		return TokenPair{}, err
	}
	won, err := s.sessions.InvalidateAndReplace(ctx, digest, next)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: rotate session: %w", err)
	}
	if !won {
		return TokenPair{}, ErrSessionRevoked
	}
	s.log.InfoContext(ctx, "session rotated", "user_id", claims.UserID, "session_id", next.ID)
	return pair, nil
}

// Logout revokes the session behind a refresh token. It is idempotent:
// unknown, already-revoked, and even unparseable tokens all succeed, since the
// caller's goal state (no valid session for that token) already holds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	digest := s.hasher.Digest(refreshToken)
	if err := s.sessions.Invalidate(ctx, digest); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// LogoutAll revokes every valid session of the user and reports the count.
func (s *Service) LogoutAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.sessions.InvalidateAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("auth: logout all: %w", err)
	}
	s.log.InfoContext(ctx, "all sessions revoked", "user_id", userID, "count", n)
	return n, nil
}

// User loads the profile behind a verified access token's subject.
func (s *Service) User(ctx context.Context, userID int64) (identity.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Codec exposes the token codec for the HTTP middleware.
func (s *Service) Codec() *token.Codec { return s.codec }

func (s *Service) mintPair(userID int64, email string) (TokenPair, session.Record, error) {
	access, accessExp, err := s.codec.Mint(userID, email, token.KindAccess)
	if err != nil {
		return TokenPair{}, session.Record{}, err
	}
	refresh, refreshExp, err := s.codec.Mint(userID, email, token.KindRefresh)
	if err != nil {
		return TokenPair{}, session.Record{}, err
	}
	now := s.now().UTC()
	rec := session.Record{
		ID:          ulid.Make().String(),
		UserID:      userID,
		TokenDigest: s.hasher.Digest(refresh),
		ExpiresAt:   refreshExp,
		IsValid:     true,
		CreatedAt:   now,
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		UserID:           userID,
	}, rec, nil
}
