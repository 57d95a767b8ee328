package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.APIKey != "" {
		t.Error("missing file must yield no credential")
	}
	if cfg.Search.RunMode != def.Search.RunMode || cfg.Search.ShortsSec != def.Search.ShortsSec {
		t.Errorf("cfg = %+v, want defaults", cfg.Search)
	}
	if len(cfg.Search.Regions) != 1+len(ForeignPreset) {
		t.Errorf("regions = %v", cfg.Search.Regions)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := DefaultConfig()
	want.APIKey = "test-key-123"
	want.Search.RunMode = "channels"
	want.Search.MinViewsPerHour = 42.5
	want.Search.Regions = []string{"KR", "JP"}

	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Credential file must not be world-readable.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.APIKey != want.APIKey {
		t.Errorf("APIKey = %q", got.APIKey)
	}
	if got.Search.RunMode != "channels" || got.Search.MinViewsPerHour != 42.5 {
		t.Errorf("search = %+v", got.Search)
	}
	if len(got.Search.Regions) != 2 {
		t.Errorf("regions = %v", got.Search.Regions)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}
	if err := Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}
	// Deleting a missing file is fine.
	if err := Delete(path); err != nil {
		t.Errorf("Delete on missing file: %v", err)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got *Config
	stop, err := Watch(path, func(c Config) {
		mu.Lock()
		got = &c
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	updated := DefaultConfig()
	updated.APIKey = "rotated"
	if err := Save(updated, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		done := got != nil && got.APIKey == "rotated"
		mu.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatal("watcher never delivered the reload")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
