package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if filepath.Base(cfg.Store.Path) != "petquest.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.Prefix != "petquest:" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Pet.TickInterval != time.Hour {
		t.Errorf("tick interval = %s", cfg.Pet.TickInterval)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: redis
redis:
  addr: cache:6380
  db: 2
log:
  level: debug
pet:
  tick_interval: 15m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverRedis || cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Pet.TickInterval != 15*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Redis.Prefix != "petquest:" {
		t.Fatalf("prefix = %q", cfg.Redis.Prefix)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv("PETQUEST_LOG_LEVEL", "error")
	t.Setenv("PETQUEST_STORE_PATH", "/tmp/other.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want env value", cfg.Log.Level)
	}
	if cfg.Store.Path != "/tmp/other.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("explicit missing file should fail")
	}

	path := writeConfig(t, "store:\n  driver: mongo\n")
	_, err := Load(path)
	if !errors.Is(err, store.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}

	path = writeConfig(t, "pet:\n  tick_interval: 10ms\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected tick interval error")
	}
}
