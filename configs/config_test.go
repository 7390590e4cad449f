package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("INTASEND_PUBLISHABLE_KEY", "ISPubKey_test")
	t.Setenv("INTASEND_SECRET_KEY", "ISSecretKey_test")
	t.Setenv("INTASEND_TEST_MODE", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/payments")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadReadsSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_BASE_URL", "https://pay.example.co.ke/")
	t.Setenv("PORT", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.IntaSendTestMode {
		t.Fatalf("expected test mode on")
	}
	if s.Port != "8080" {
		t.Fatalf("expected default port, got %q", s.Port)
	}
	if s.PublicBaseURL != "https://pay.example.co.ke" {
		t.Fatalf("trailing slash not trimmed: %q", s.PublicBaseURL)
	}
	if s.ReconcileCron != "*/5 * * * *" {
		t.Fatalf("unexpected cron spec %q", s.ReconcileCron)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("INTASEND_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	if !strings.Contains(err.Error(), "INTASEND_SECRET_KEY") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("error should name missing keys: %v", err)
	}
}

func TestLoadInvalidTestMode(t *testing.T) {
	setRequired(t)
	t.Setenv("INTASEND_TEST_MODE", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for INTASEND_TEST_MODE")
	}
}
