package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout.HorizontalSpacing != layout.DefaultHorizontalSpacing {
		t.Errorf("horizontal spacing = %v", cfg.Layout.HorizontalSpacing)
	}
	if cfg.View.ColumnCutoff != explore.DefaultColumnCutoff {
		t.Errorf("column cutoff = %d", cfg.View.ColumnCutoff)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("expected cache backend 'file', got %q", cfg.Cache.Backend)
	}
	if cfg.Session.Backend != SessionMemory {
		t.Errorf("expected session backend 'memory', got %q", cfg.Session.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := Dir(); dir != "/tmp/test-xdg/lineageview" {
		t.Errorf("expected /tmp/test-xdg/lineageview, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if dir, want := Dir(), filepath.Join(home, ".config", "lineageview"); dir != want {
		t.Errorf("expected %q, got %q", want, dir)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-xdg")
	dir, err := CacheDir()
	if err != nil || dir != "/tmp/cache-xdg/lineageview" {
		t.Errorf("CacheDir() = %q, %v", dir, err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.View.ColumnCutoff = 25
	cfg.Session.Backend = SessionRedis
	cfg.Session.TTL = 2 * time.Hour
	cfg.Server.Watch = true
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.View.ColumnCutoff != 25 {
		t.Errorf("column cutoff = %d, want 25", loaded.View.ColumnCutoff)
	}
	if loaded.Session.Backend != SessionRedis || loaded.Session.TTL != 2*time.Hour {
		t.Errorf("session = %+v", loaded.Session)
	}
	if !loaded.Server.Watch {
		t.Error("server.watch should round-trip")
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() without a file should return defaults, got %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(explicit missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[layout]
horizontal_spacing = 300.0

[cache]
backend = "none"
ttl = "90m"
namespace = "jaffle"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.HorizontalSpacing != 300 {
		t.Errorf("horizontal spacing = %v, want 300", cfg.Layout.HorizontalSpacing)
	}
	if cfg.Layout.VerticalSpacing != layout.DefaultVerticalSpacing {
		t.Errorf("vertical spacing should keep its default, got %v", cfg.Layout.VerticalSpacing)
	}
	if cfg.Cache.Backend != CacheNone || cfg.Cache.TTL != 90*time.Minute || cfg.Cache.Namespace != "jaffle" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[layout\n"},
		{"cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"session backend", "[session]\nbackend = \"sqlite\"\n"},
		{"negative cutoff", "[view]\ncolumn_cutoff = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}
