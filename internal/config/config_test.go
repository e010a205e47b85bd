package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
storage:
  driver: sqlite
  sqlitePath: /tmp/brainscore.db
admin:
  email: admin@example.com
  passwordHash: $2a$04$abcdefghijklmnopqrstuu
  jwtSecret: 0123456789abcdef
  tokenTTL: 2h
media:
  driver: fs
  basePath: ./media
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.StorageDriver() != "sqlite" || cfg.Storage.SQLitePath != "/tmp/brainscore.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := TTLDuration(cfg.Admin.TokenTTL, time.Hour); got != 2*time.Hour {
		t.Fatalf("expected 2h token ttl, got %v", got)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: mongo
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid storage driver to fail")
	}
}

func TestValidateCloudinaryNeedsCredentials(t *testing.T) {
	cfg := Config{}
	cfg.Media.Driver = "cloudinary"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected cloudinary without credentials to fail")
	}
	cfg.Media.CloudName = "demo"
	cfg.Media.UploadPreset = "unsigned"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ADMIN_EMAIL":  "owner@example.com",
		"POSTGRES_URL": "postgres://quiz@localhost/quiz",
	}
	cfg := Config{}
	cfg.Admin.Email = "admin@example.com"
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if cfg.Admin.Email != "owner@example.com" {
		t.Fatalf("expected env email override, got %s", cfg.Admin.Email)
	}
	if cfg.StorageDriver() != "postgres" {
		t.Fatalf("expected postgres driver from url, got %s", cfg.StorageDriver())
	}
}

func TestStorageDefaults(t *testing.T) {
	cfg := Config{}
	if cfg.StorageDriver() != "memory" || cfg.MediaDriver() != "fs" {
		t.Fatalf("unexpected defaults: storage=%s media=%s", cfg.StorageDriver(), cfg.MediaDriver())
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}

func TestValidateAdminNeedsSecret(t *testing.T) {
	cfg := Config{}
	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.PasswordHash = "$2a$04$abcdefghijklmnopqrstuu"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected admin without jwtSecret to fail")
	}
	cfg.Admin.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short jwtSecret to fail")
	}
	cfg.Admin.JWTSecret = "0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cfg.Admin.PasswordHash = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected admin without passwordHash to fail")
	}
}

func TestValidateWithoutAdmin(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config without admin to validate: %v", err)
	}
}
