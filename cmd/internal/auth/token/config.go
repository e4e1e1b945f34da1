package token

import (
	"fmt"
	"os"
	"time"
)

// Environment keys for codec configuration.
const (
	EnvAccessSecret  = "CREDO_JWT_ACCESS_SECRET"
	EnvRefreshSecret = "CREDO_JWT_REFRESH_SECRET"
	EnvAccessTTL     = "CREDO_ACCESS_TTL"
	EnvRefreshTTL    = "CREDO_REFRESH_TTL"
)

const (
	// MinSecretBytes is the floor for HS256 signing keys. Shorter keys are a
	// brute-force liability and are rejected at boot, not at first use.
	MinSecretBytes = 32

	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds the two independent HS256 keys and the per-kind lifetimes.
// Access and refresh secrets MUST differ; sharing a key would let a refresh
// token pass access-token verification but for the kind claim alone.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Validate checks key strength and TTL sanity.
func (c Config) Validate() error {
	if len(c.AccessSecret) < MinSecretBytes {
		return fmt.Errorf("%w: access secret under %d bytes", ErrConfig, MinSecretBytes)
	}
	if len(c.RefreshSecret) < MinSecretBytes {
		return fmt.Errorf("%w: refresh secret under %d bytes", ErrConfig, MinSecretBytes)
	}
	if string(c.AccessSecret) == string(c.RefreshSecret) {
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrConfig)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("%w: TTLs must be positive", ErrConfig)
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("%w: refresh TTL must exceed access TTL", ErrConfig)
	}
	return nil
}

// LoadConfigFromEnv builds a Config from CREDO_* environment variables.
// Secrets are required; TTLs fall back to the defaults.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		AccessSecret:  []byte(os.Getenv(EnvAccessSecret)),
		RefreshSecret: []byte(os.Getenv(EnvRefreshSecret)),
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
		Issuer:        "credo",
	}
	if raw := os.Getenv(EnvAccessTTL); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, EnvAccessTTL, err)
		}
		cfg.AccessTTL = d
	}
	if raw := os.Getenv(EnvRefreshTTL); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, EnvRefreshTTL, err)
		}
		cfg.RefreshTTL = d
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
