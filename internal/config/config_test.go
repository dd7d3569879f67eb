package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":3001" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Data.DBPath != filepath.Join("data", "db.json") {
		t.Errorf("db path = %q", cfg.Data.DBPath)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Watcher.Enabled {
		t.Error("watcher must default to enabled")
	}
	if cfg.Watcher.Debounce != 200*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watcher.Debounce)
	}
	if cfg.Simulator.ProvisionDelay != 5*time.Second {
		t.Errorf("provision delay = %v", cfg.Simulator.ProvisionDelay)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":8080"
auth:
  token_ttl: 30m
watcher:
  enabled: false
simulator:
  provision_delay: 1s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Watcher.Enabled {
		t.Error("watcher should be disabled by the file")
	}
	if cfg.Simulator.ProvisionDelay != time.Second {
		t.Errorf("provision delay = %v", cfg.Simulator.ProvisionDelay)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATA_DIR", "/var/lib/clusterdesk")
	t.Setenv("FRONTEND_URL", "https://console.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Data.DBPath != "/var/lib/clusterdesk/db.json" {
		t.Errorf("db path = %q", cfg.Data.DBPath)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "https://console.example.com" {
		t.Errorf("cors = %v", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoad_BadDurationErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  token_ttl: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
