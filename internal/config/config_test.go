package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := Load("")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got cfg=%+v err=%v", cfg, err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config on missing key")
	}
}

func TestLoadFromEnvironmentDefaults(t *testing.T) {
	t.Setenv("API_KEY", "  secret-token  ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "secret-token" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://newsapi.org/v2/" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Country != "us" {
		t.Fatalf("Country = %q", cfg.Country)
	}
	if cfg.Debounce != 1500*time.Millisecond {
		t.Fatalf("Debounce = %v", cfg.Debounce)
	}
	if cfg.MaxQueryLength != 500 {
		t.Fatalf("MaxQueryLength = %d", cfg.MaxQueryLength)
	}
	if cfg.EmptyQueryPolicy != EmptyQueryIgnore {
		t.Fatalf("EmptyQueryPolicy = %q", cfg.EmptyQueryPolicy)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	t.Setenv("API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
API_KEY: file-token
base_url: https://news.example.com/v2/
country: GB
debounce_ms: 250
empty_query_policy: Reset
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "file-token" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://news.example.com/v2/" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Country != "gb" {
		t.Fatalf("Country = %q", cfg.Country)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Fatalf("Debounce = %v", cfg.Debounce)
	}
	if cfg.EmptyQueryPolicy != EmptyQueryReset {
		t.Fatalf("EmptyQueryPolicy = %q", cfg.EmptyQueryPolicy)
	}
}

func TestLoadRejectsUnknownEmptyQueryPolicy(t *testing.T) {
	t.Setenv("API_KEY", "token")
	t.Setenv("EMPTY_QUERY_POLICY", "explode")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown empty_query_policy")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("API_KEY", "token")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestRedactedHidesAPIKey(t *testing.T) {
	cfg := Config{APIKey: "secret"}
	if got := cfg.Redacted().APIKey; got != "***" {
		t.Fatalf("Redacted APIKey = %q", got)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("Redacted must not mutate the receiver")
	}
}

func TestLoadRelaySettings(t *testing.T) {
	t.Setenv("API_KEY", "token")
	t.Setenv("SINKS_FILE", "/etc/newsreader/sinks.yml")
	t.Setenv("RELAY_INTERVAL", "60")
	t.Setenv("STORAGE_TTL_SECONDS", "3600")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SinksFile != "/etc/newsreader/sinks.yml" {
		t.Fatalf("SinksFile = %q", cfg.SinksFile)
	}
	if cfg.RelayInterval != time.Minute || cfg.StorageTTL != time.Hour {
		t.Fatalf("RelayInterval = %v, StorageTTL = %v", cfg.RelayInterval, cfg.StorageTTL)
	}
	if cfg.StorageType != "bbolt" || cfg.StorageCleanup != 6*time.Hour {
		t.Fatalf("StorageType = %q, StorageCleanup = %v", cfg.StorageType, cfg.StorageCleanup)
	}

	t.Setenv("RELAY_INTERVAL", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for zero relay_interval")
	}
}
