package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the database is configured and reachable.
	ReadinessRequireDB bool

	// If true, CREDO_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and refresh-token
	// digests must be HMAC-based rather than plain SHA-256.
	RequireTokenHMAC bool

	// SessionSweepInterval controls how often expired session rows are deleted.
	// Zero disables the sweeper; revocation checks never depend on it.
	SessionSweepInterval time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CREDO_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CREDO_LOG_LEVEL", "info"),
		LogFormat: EnvString("CREDO_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CREDO_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CREDO_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CREDO_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CREDO_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CREDO_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CREDO_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CREDO_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CREDO_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("CREDO_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("CREDO_REQUIRE_TOKEN_HMAC", false),

		SessionSweepInterval: EnvDuration("CREDO_SESSION_SWEEP_INTERVAL", time.Hour),
	}
}
