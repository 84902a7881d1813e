package store

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/petquest.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []byte(`"v"`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `"v"` {
		t.Fatalf("expected persisted value, got %q", got)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key/value
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	v, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("expected nil for missing key, got %q", v)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Set("a", []byte("1"))
	s.Set("a", []byte("2"))

	v, _ := s.Get("a")
	if string(v) != "2" {
		t.Fatalf("expected overwrite, got %q", v)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	s.Set("b", []byte("1"))
	s.Set("a", []byte("1"))

	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	v, _ := s.Get("a")
	if v != nil {
		t.Fatal("deleted key should be gone")
	}
	if v, _ := s.Get("b"); string(v) != "1" {
		t.Fatal("other keys should survive a delete")
	}
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettings(t *testing.T) {
	s := newTestStore(t)

	tests := map[string]string{
		"pomodoro_work":       "1500",
		"pomodoro_break":      "300",
		"pomodoro_long_break": "900",
		"pomodoro_count":      "4",
		"daily_goal":          "7200",
	}
	for k, want := range tests {
		got, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if got != want {
			t.Errorf("setting %q = %q, want %q", k, got, want)
		}
	}
}

func TestSetSettingUpsert(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("pomodoro_count", "6"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetIntSetting("pomodoro_count", 4); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestGetIntSettingFallback(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetIntSetting("missing", 42); got != 42 {
		t.Fatalf("missing key should fall back, got %d", got)
	}
	s.SetSetting("bad", "abc")
	if got := s.GetIntSetting("bad", 7); got != 7 {
		t.Fatalf("non-numeric value should fall back, got %d", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 6 {
		t.Fatalf("expected 6 default settings, got %d", len(settings))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Fatal("settings should be sorted by key")
		}
	}
}
