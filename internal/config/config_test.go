package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HELPDESK_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":8080" || cfg.DatabaseURL != "helpdesk.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPassword != "admin@123" {
		t.Fatalf("unexpected admin defaults: %q/%q", cfg.AdminUsername, cfg.AdminPassword)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helpdesk.yaml")
	body := []byte("http_port: \":9090\"\ndatabase_url: /tmp/file.db\nsession_ttl: 30m\ncors_origins:\n  - http://a.example\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "/tmp/env.db")
	t.Setenv("CORS_ORIGINS", "http://b.example, http://c.example")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":9090" {
		t.Errorf("HTTPPort = %q, want file value", cfg.HTTPPort)
	}
	if cfg.DatabaseURL != "/tmp/env.db" {
		t.Errorf("DatabaseURL = %q, want env override", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %s, want file value kept on bad env", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://c.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestMustGetInt(t *testing.T) {
	t.Setenv("HELPDESK_TEST_INT", "42")
	if got := MustGetInt("HELPDESK_TEST_INT", 1); got != 42 {
		t.Fatalf("MustGetInt = %d", got)
	}
	t.Setenv("HELPDESK_TEST_INT", "x")
	if got := MustGetInt("HELPDESK_TEST_INT", 1); got != 1 {
		t.Fatalf("MustGetInt fallback = %d", got)
	}
}
