package app

import (
	"errors"

	sectoken "credo/cmd/security/token"
)

// ValidateSecurityConfig enforces the startup security policy. Fail-fast is
// the point: a service that boots with weak or missing signing keys would mint
// forgeable credentials until somebody notices.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// Minimum 32 bytes for an HMAC-SHA256 secret, measured as raw bytes.
	if _, err := sectoken.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, sectoken.ErrHMACKeyMissing):
			return errors.New("security policy: CREDO_REQUIRE_TOKEN_HMAC=true but CREDO_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, sectoken.ErrHMACKeyTooShort):
			return errors.New("security policy: CREDO_REQUIRE_TOKEN_HMAC=true but CREDO_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	if !sectoken.NewHasherFromEnv().HMACEnabled() {
		return errors.New("security policy: CREDO_REQUIRE_TOKEN_HMAC=true but the token hasher is not in HMAC mode")
	}

	return nil
}
