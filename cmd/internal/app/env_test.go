package app

import (
	"testing"
	"time"
)

func TestEnvHelpers_Defaults(t *testing.T) {
	if got := EnvString("CREDO_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("EnvString default: %q", got)
	}
	if got := EnvBool("CREDO_TEST_UNSET", true); !got {
		t.Fatalf("EnvBool default: %v", got)
	}
	if got := EnvInt("CREDO_TEST_UNSET", 7); got != 7 {
		t.Fatalf("EnvInt default: %d", got)
	}
	if got := EnvDuration("CREDO_TEST_UNSET", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration default: %v", got)
	}
}

func TestEnvHelpers_ParseAndReject(t *testing.T) {
	t.Setenv("CREDO_TEST_BOOL", "true")
	if !EnvBool("CREDO_TEST_BOOL", false) {
		t.Fatalf("EnvBool did not parse true")
	}

	t.Setenv("CREDO_TEST_INT", "42")
	if got := EnvInt("CREDO_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt parse: %d", got)
	}

	t.Setenv("CREDO_TEST_INT", "-3")
	if got := EnvInt("CREDO_TEST_INT", 1); got != 1 {
		t.Fatalf("EnvInt must reject non-positive values, got %d", got)
	}

	t.Setenv("CREDO_TEST_DUR", "90s")
	if got := EnvDuration("CREDO_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("EnvDuration parse: %v", got)
	}

	t.Setenv("CREDO_TEST_DUR", "soon")
	if got := EnvDuration("CREDO_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration must reject garbage, got %v", got)
	}
}
