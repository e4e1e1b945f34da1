package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"credo/cmd/identity"
	"credo/cmd/internal/auth/session"
	"credo/cmd/internal/auth/token"
)

func newTestService(t *testing.T) (*Service, *identity.MemoryStore, *session.MemoryStore) {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		AccessSecret:  []byte(strings.Repeat("a", 32)),
		RefreshSecret: []byte(strings.Repeat("r", 32)),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "credo-test",
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	users := identity.NewMemoryStore()
	sessions := session.NewMemoryStore()
	svc, err := NewService(users, sessions, codec, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, users, sessions
}

func TestSignupThenLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, signupPair, err := svc.Signup(ctx, "Ada@Example.com", "Ada Lovelace", "difference-engine")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if signupPair.AccessToken == "" || signupPair.RefreshToken == "" {
		t.Fatalf("signup must issue a token pair: %+v", signupPair)
	}

	pair, err := svc.Login(ctx, "ada@example.com", "difference-engine")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("bad token pair: %+v", pair)
	}

	claims, err := svc.Codec().Verify(pair.AccessToken, token.KindAccess)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	if claims.UserID != u.ID || claims.Email != u.Email {
		t.Fatalf("wrong claims: %+v", claims)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "dup@example.com", "First", "password-one"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, "DUP@example.com", "Second", "password-two")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "real@example.com", "Real", "correct-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, errPass := svc.Login(ctx, "real@example.com", "wrong-password")
	_, errEmail := svc.Login(ctx, "ghost@example.com", "whatever-password")
	if !errors.Is(errPass, ErrInvalidCredentials) || !errors.Is(errEmail, ErrInvalidCredentials) {
		t.Fatalf("want identical ErrInvalidCredentials, got %v / %v", errPass, errEmail)
	}
}

func TestRefresh_RotatesAndRetiresOld(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	first, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh must issue a new refresh token")
	}

	// Replaying the retired token is a revocation, not a signature problem.
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("want ErrSessionRevoked on replay, got %v", err)
	}

	// The replacement chain keeps working.
	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("Refresh on rotated token: %v", err)
	}
}

func TestRefresh_RejectsGarbageAndAccessTokens(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	pair, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("garbage: want ErrInvalidRefreshToken, got %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("access token: want ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefresh_ExpiredSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	pair, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Advance the service clock past the session row's expiry but keep the
	// codec on real time so the JWT itself still verifies.
	future := time.Now().Add(8 * 24 * time.Hour)
	late := svc.WithNow(func() time.Time { return future })

	if _, err := late.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
}

func TestRefresh_ExpiryInstantCountsAsExpired(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	pair, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Pin the service clock to the session row's exact expiry instant; the
	// JWT itself is still fine under the codec's real clock.
	at := svc.WithNow(func() time.Time { return pair.RefreshExpiresAt })

	if _, err := at.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired at the expiry instant, got %v", err)
	}
}

func TestConcurrentRefresh_ExactlyOneWinner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	pair, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	const n = 16
	var wins atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.Refresh(gctx, pair.RefreshToken)
			switch {
			case err == nil:
				wins.Add(1)
				return nil
			case errors.Is(err, ErrSessionRevoked):
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent refresh: %v", err)
	}
	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winning refresh, got %d", wins.Load())
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "u@example.com", "U", "some-password"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	pair, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if err := svc.Logout(ctx, "never-a-token"); err != nil {
		t.Fatalf("Logout of unknown token: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("want ErrSessionRevoked after logout, got %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, signupPair, err := svc.Signup(ctx, "u@example.com", "U", "some-password")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	a, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	b, err := svc.Login(ctx, "u@example.com", "some-password")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	// Signup opened a session too, so three are outstanding.
	n, err := svc.LogoutAll(ctx, u.ID)
	if err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 revoked sessions, got %d", n)
	}
	for _, pair := range []TokenPair{signupPair, a, b} {
		if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("want ErrSessionRevoked after logout-all, got %v", err)
		}
	}
}
