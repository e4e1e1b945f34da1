package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

// HMACEnvKey is the env var name for the token HMAC secret.
// #nosec G101 -- not a credential; it's an environment variable name.
const HMACEnvKey = "CREDO_TOKEN_HMAC_KEY"

// Hasher produces the server-side digests under which refresh tokens are
// stored and looked up. The key is captured once at construction so every
// digest minted during the process lifetime uses the same function; reading
// the environment per call could split mint and lookup across two keys.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher in HMAC-SHA256 mode when key is non-empty and in
// plain SHA-256 mode otherwise.
func NewHasher(key []byte) *Hasher {
	return &Hasher{key: key}
}

// NewHasherFromEnv builds a Hasher from CREDO_TOKEN_HMAC_KEY. A missing or
// blank key selects the SHA-256 fallback for dev setups; production deploys
// enforce a keyed hasher through the startup security policy.
func NewHasherFromEnv() *Hasher {
	return NewHasher([]byte(strings.TrimSpace(os.Getenv(HMACEnvKey))))
}

// HMACEnabled reports whether digests are keyed.
func (h *Hasher) HMACEnabled() bool { return len(h.key) > 0 }

// Digest returns the hex digest under which a refresh token is stored.
// A database leak therefore exposes no usable credentials, and with a keyed
// hasher not even an offline-hashable image of them.
func (h *Hasher) Digest(token string) string {
	if len(h.key) == 0 {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:])
	}
	m := hmac.New(sha256.New, h.key)
	_, _ = m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}

// HMACKeyFromEnv returns the configured HMAC key bytes (trimmed), enforcing a
// minimum byte length. Used by the startup security policy.
// If the env var is missing/blank -> ErrHMACKeyMissing.
// If too short -> ErrHMACKeyTooShort.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}
