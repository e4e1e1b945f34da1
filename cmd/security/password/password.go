package password

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength is the baseline minimum password length.
	MinLength = 8
	// MaxLength is the maximum accepted password length in bytes.
	// bcrypt only consumes the first 72 bytes of input; longer passwords
	// would silently collide, so they are rejected outright.
	MaxLength = 72

	costEnvKey = "CREDO_BCRYPT_COST"
)

// Cost returns the bcrypt cost factor, optionally overridden by env.
// Out-of-range or unparsable values fall back to bcrypt.DefaultCost.
func Cost() int {
	v := strings.TrimSpace(os.Getenv(costEnvKey))
	if v == "" {
		return bcrypt.DefaultCost
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return n
}

// Hash returns a bcrypt hash of plain (salt is generated per call).
func Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrPasswordTooShort
	}
	if len(plain) > MaxLength {
		return "", ErrPasswordTooLong
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), Cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time inside bcrypt itself.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyHash returns a hash suitable for burning a bcrypt comparison when no
// real credential exists. Login handlers use it so that "unknown user" and
// "wrong password" take the same time.
func DummyHash() (string, error) {
	return Hash("dummy-password-for-timing-only")
}
