package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestParseCSVEnv checks parsing of the admin email list.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing checks the result for an unset variable.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	got, err := parseBoolEnv("MISSING_BOOL", true)
	if err != nil || !got {
		t.Fatalf("expected fallback true, got %v (%v)", got, err)
	}

	t.Setenv("DB_AUTO_MIGRATE", "false")
	got, err = parseBoolEnv("DB_AUTO_MIGRATE", true)
	if err != nil || got {
		t.Fatalf("expected false, got %v (%v)", got, err)
	}

	t.Setenv("DB_AUTO_MIGRATE", "maybe")
	if _, err := parseBoolEnv("DB_AUTO_MIGRATE", true); err == nil {
		t.Fatalf("expected error for invalid boolean")
	}
}

// TestParseOptionalDurationEnv checks that zero is accepted and negatives are not.
func TestParseOptionalDurationEnv(t *testing.T) {
	t.Setenv("LOOKUP_LATENCY", "0s")
	got, err := parseOptionalDurationEnv("LOOKUP_LATENCY")
	if err != nil || got != 0 {
		t.Fatalf("expected 0, got %v (%v)", got, err)
	}

	t.Setenv("LOOKUP_LATENCY", "-1s")
	if _, err := parseOptionalDurationEnv("LOOKUP_LATENCY"); err == nil {
		t.Fatalf("expected error for negative duration")
	}
}

func TestDatabaseURLs(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "reaper", Password: "p@ss", Name: "subs", SSLMode: "disable"}

	if got := cfg.DSN(); got != "postgres://reaper:p%40ss@db:5432/subs?sslmode=disable" {
		t.Fatalf("expected postgres dsn, got %s", got)
	}

	if got := cfg.MigrationURL(); !strings.HasPrefix(got, "pgx5://") {
		t.Fatalf("expected pgx5 scheme, got %s", got)
	}
}

// TestLoad checks defaults and validation of a minimal environment.
func TestLoad(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AI_PROVIDER", "Anthropic")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LOOKUP_LATENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AI.Provider != "anthropic" || cfg.AI.APIKey != "sk-test" {
		t.Fatalf("expected anthropic provider with key, got %s / %s", cfg.AI.Provider, cfg.AI.APIKey)
	}

	if cfg.Rates.BaseURL != "https://api.frankfurter.app" {
		t.Fatalf("expected default rates url, got %s", cfg.Rates.BaseURL)
	}

	if cfg.Catalog.LookupDebounce != 300*time.Millisecond || cfg.Catalog.LookupLatency != 0 {
		t.Fatalf("expected lookup defaults, got %v / %v", cfg.Catalog.LookupDebounce, cfg.Catalog.LookupLatency)
	}

	if !cfg.Database.AutoMigrate {
		t.Fatalf("expected auto migrate by default")
	}

	t.Setenv("AI_PROVIDER", "watson")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
