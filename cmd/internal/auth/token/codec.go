package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Kind discriminates the two token families. The value is embedded in the
// "type" claim so a token carries its own kind and cannot be replayed across
// endpoints even if the secrets were ever unified.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) valid() bool { return k == KindAccess || k == KindRefresh }

// Claims is the signed payload of both token kinds.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Kind   Kind   `json:"type"`
	jwt.RegisteredClaims
}

// Codec mints and verifies HS256 tokens. Each kind signs with its own secret,
// so a stolen refresh token is useless against access-token checks and vice versa.
type Codec struct {
	cfg Config
	now func() time.Time
}

// NewCodec validates cfg and returns a codec using wall-clock time.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, now: time.Now}, nil
}

// WithNow returns a copy of the codec with an overridden clock, for tests.
func (c *Codec) WithNow(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

func (c *Codec) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return c.cfg.RefreshSecret
	}
	return c.cfg.AccessSecret
}

func (c *Codec) ttlFor(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.cfg.RefreshTTL
	}
	return c.cfg.AccessTTL
}

// Mint signs a new token of the given kind and returns it with its expiry.
func (c *Codec) Mint(userID int64, email string, kind Kind) (string, time.Time, error) {
	if !kind.valid() {
		return "", time.Time{}, fmt.Errorf("%w: unknown kind %q", ErrConfig, kind)
	}
	now := c.now().UTC()
	exp := now.Add(c.ttlFor(kind))
	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every token unique even within one clock second,
			// so refresh-token digests never collide in storage.
			ID:        ulid.Make().String(),
			Issuer:    c.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(c.secretFor(kind))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: mint %s: %w", kind, err)
	}
	return signed, exp, nil
}

// Verify parses and validates a token, requiring it to be of the given kind.
//
// The error ladder is ordered so the most diagnostic failure wins:
// unparseable input -> ErrMalformed; a token signed with the OTHER kind's
// secret, or carrying the other kind claim -> ErrWrongKind; past expiry ->
// ErrExpired; anything else that fails signature checks -> ErrInvalidSignature.
func (c *Codec) Verify(raw string, want Kind) (Claims, error) {
	if !want.valid() {
		return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrConfig, want)
	}
	claims, err := c.parse(raw, c.secretFor(want))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			// Distinguish "wrong family" from "forged": a token that verifies
			// under the other kind's secret was minted by us for the other use.
			if _, other := c.parse(raw, c.secretFor(otherKind(want))); other == nil ||
				errors.Is(other, jwt.ErrTokenExpired) {
				return Claims{}, ErrWrongKind
			}
			return Claims{}, ErrInvalidSignature
		default:
			return Claims{}, ErrInvalidSignature
		}
	}
	if claims.Kind != want {
		return Claims{}, ErrWrongKind
	}
	return claims, nil
}

func (c *Codec) parse(raw string, secret []byte) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(c.cfg.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func otherKind(k Kind) Kind {
	if k == KindAccess {
		return KindRefresh
	}
	return KindAccess
}
