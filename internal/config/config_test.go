package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DEVTRACE_JWT_SECRET", "test-secret")
}

func TestLoad_MissingSecret_Fails(t *testing.T) {
	t.Setenv("DEVTRACE_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DEVTRACE_JWT_SECRET is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want 100", cfg.RateLimit)
	}
	if cfg.RateWindow != time.Minute {
		t.Errorf("RateWindow = %v, want 1m", cfg.RateWindow)
	}
	if cfg.VerifyTimeout != 10*time.Second {
		t.Errorf("VerifyTimeout = %v, want 10s", cfg.VerifyTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DEVTRACE_PORT", "9090")
	t.Setenv("DEVTRACE_RATE_LIMIT", "5")
	t.Setenv("DEVTRACE_RATE_WINDOW", "10s")
	t.Setenv("DEVTRACE_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %d, want 5", cfg.RateLimit)
	}
	if cfg.RateWindow != 10*time.Second {
		t.Errorf("RateWindow = %v, want 10s", cfg.RateWindow)
	}
	if cfg.IsDevelopment() {
		t.Error("expected non-development env")
	}
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("DEVTRACE_RATE_LIMIT", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want fallback 100", cfg.RateLimit)
	}
}

func TestLoad_NegativeRateLimit_Fails(t *testing.T) {
	setRequired(t)
	t.Setenv("DEVTRACE_RATE_LIMIT", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative rate limit")
	}
}
