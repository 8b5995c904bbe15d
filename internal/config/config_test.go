package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultDerivesWebsocketURL(t *testing.T) {
	cfg := Default()
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url %s", cfg.Server.BaseURL)
	}
	if cfg.Server.WSURL != "ws://localhost:8000" {
		t.Errorf("unexpected ws url %s", cfg.Server.WSURL)
	}
	if cfg.Session.Path == "" {
		t.Error("expected a default session path")
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	path := writeConfig(t, `
version: 1
server:
  base_url: https://pipeline.example.com
session:
  path: /tmp/oii.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "https://pipeline.example.com" {
		t.Errorf("unexpected base url %s", cfg.Server.BaseURL)
	}
	if cfg.Server.WSURL != "wss://pipeline.example.com" {
		t.Errorf("expected wss derivation, got %s", cfg.Server.WSURL)
	}
	if cfg.Session.Path != "/tmp/oii.db" {
		t.Errorf("unexpected session path %s", cfg.Session.Path)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, "version: 3\n")
	if _, err := Load(path); err == nil {
		t.Error("expected version check to fail")
	}
}

func TestExplicitWSURLWins(t *testing.T) {
	path := writeConfig(t, `
version: 1
server:
  base_url: http://pipeline.example.com
  ws_url: ws://stream.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.WSURL != "ws://stream.example.com" {
		t.Errorf("explicit ws_url overridden: %s", cfg.Server.WSURL)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("OPENOII_SERVER_URL", "http://staging.example.com")
	t.Setenv("OPENOII_SESSION_PATH", "/var/run/oii.db")

	path := writeConfig(t, `
version: 1
server:
  base_url: http://pipeline.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://staging.example.com" {
		t.Errorf("env base url ignored: %s", cfg.Server.BaseURL)
	}
	if cfg.Server.WSURL != "ws://staging.example.com" {
		t.Errorf("expected ws url re-derived from env base, got %s", cfg.Server.WSURL)
	}
	if cfg.Session.Path != "/var/run/oii.db" {
		t.Errorf("env session path ignored: %s", cfg.Session.Path)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
