package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://api.local/")
	t.Setenv("SESSION_STORE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "http://api.local" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.SessionStore != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.SessionStore)
	}
	if cfg.APITimeout != defaultAPITimeout {
		t.Fatalf("expected default timeout, got %s", cfg.APITimeout)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadTimeoutSecondsWins(t *testing.T) {
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("API_TIMEOUT", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.APITimeout)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_IDLE_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid SESSION_IDLE_TTL")
	}
}

func TestLoadRequiresRedisURLForRedisStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when REDIS_URL is missing")
	}
}

func TestLoadUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "cookie")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestIsDev(t *testing.T) {
	if !(Config{AppEnv: "Local"}).IsDev() {
		t.Fatalf("expected local to be dev")
	}
	if (Config{AppEnv: "production"}).IsDev() {
		t.Fatalf("expected production not to be dev")
	}
}
