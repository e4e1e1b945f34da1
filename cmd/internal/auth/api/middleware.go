package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"credo/cmd/internal/auth/token"
)

// Identity is the caller as proven by a verified access token. Email is the
// value cached in the claims at mint time; it can lag a profile change until
// the next login or refresh.
type Identity struct {
	UserID    int64
	Email     string
	ExpiresAt time.Time
	Kind      token.Kind
}

type ctxKey struct{}

// IdentityFrom extracts the verified caller, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware verifies bearer access tokens.
type Middleware struct {
	codec *token.Codec
	log   *slog.Logger
}

func NewMiddleware(codec *token.Codec, log *slog.Logger) *Middleware {
	if log == nil {
		log = slog.Default()
	}
	return &Middleware{codec: codec, log: log}
}

// Require rejects requests without a valid access token. All failures answer
// with the same body; the precise failure kind goes to the log only, so a
// probing client cannot tell a forged token from an expired one.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		claims, err := m.codec.Verify(raw, token.KindAccess)
		if err != nil {
			m.log.WarnContext(r.Context(), "access token rejected",
				"reason", err.Error(), "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		id := Identity{
			UserID:    claims.UserID,
			Email:     claims.Email,
			ExpiresAt: claims.ExpiresAt.Time,
			Kind:      claims.Kind,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// Optional attaches an Identity when a valid token is present and passes the
// request through anonymously otherwise.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearerToken(r); ok {
			if claims, err := m.codec.Verify(raw, token.KindAccess); err == nil {
				id := Identity{
					UserID:    claims.UserID,
					Email:     claims.Email,
					ExpiresAt: claims.ExpiresAt.Time,
					Kind:      claims.Kind,
				}
				r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, rest, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
