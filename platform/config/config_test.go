package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.GetHTTPAddr())
	}
	if cfg.GetSelectionOrdering() != OrderingLatestCompletion {
		t.Fatalf("expected latest_completion ordering by default, got %q", cfg.GetSelectionOrdering())
	}
	if cfg.GetSessionTTL() != 2*time.Hour {
		t.Fatalf("expected 2h session ttl, got %s", cfg.GetSessionTTL())
	}
	if cfg.IsRedisEnabled() {
		t.Fatalf("redis must be disabled without REDIS_URL")
	}
	if cfg.GetPlacesHTTPTimeout() != 10*time.Second {
		t.Fatalf("expected 10s provider timeout, got %s", cfg.GetPlacesHTTPTimeout())
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("SESSION_SECRET", "s")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_MAPS_API_KEY") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestLoadRejectsUnknownOrdering(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SELECTION_ORDERING", "first_wins")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown ordering to be rejected")
	}
}

func TestWildcardOriginEnablesAllowAll(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "http://a.test, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatalf("expected wildcard origin to enable allow-all")
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.GetCORSOrigins())
	}
}
