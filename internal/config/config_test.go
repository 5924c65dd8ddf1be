package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("expected default API base URL, got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("expected default HTTP timeout 20s, got %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.hospital.example")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("DEMO_API_SEED", "false")

	cfg := Load()

	if cfg.APIBaseURL != "https://api.hospital.example" {
		t.Errorf("API_BASE_URL override not applied: %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTP_TIMEOUT override not applied: %s", cfg.HTTPTimeout)
	}
	if cfg.DemoSeedRecord {
		t.Error("DEMO_API_SEED=false not applied")
	}
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()
	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("malformed duration should fall back to default, got %s", cfg.HTTPTimeout)
	}
}
