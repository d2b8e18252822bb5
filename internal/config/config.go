// Package config loads lineageview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/lineageview/config.toml unless a path is
// given explicitly. Missing files yield [Default]; keys present in the file
// overlay the defaults, and CLI flags override both.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/session"
)

const appName = "lineageview"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMongo  = "mongo"
)

// Config holds lineageview configuration.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	View    ViewConfig    `toml:"view"`
	Cache   CacheConfig   `toml:"cache"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
	Sources SourcesConfig `toml:"sources"`
}

// LayoutConfig controls node spacing.
type LayoutConfig struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
}

// ViewConfig controls view resolution.
type ViewConfig struct {
	ColumnCutoff int `toml:"column_cutoff"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend"` // "file", "redis", "none"
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`

	// Namespace prefixes every key so projects can share one backend.
	Namespace string `toml:"namespace"`
}

// SessionConfig selects the server session store.
type SessionConfig struct {
	Backend       string        `toml:"backend"` // "memory", "file", "redis", "mongo"
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// SourcesConfig names the default metadata files.
type SourcesConfig struct {
	Project     string `toml:"project"` // dbt project dir; overrides manifest and catalog
	Manifest    string `toml:"manifest"`
	Catalog     string `toml:"catalog"`
	Lineage     string `toml:"lineage"`
	DocsBaseURL string `toml:"docs_base_url"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			HorizontalSpacing: layout.DefaultHorizontalSpacing,
			VerticalSpacing:   layout.DefaultVerticalSpacing,
		},
		View:    ViewConfig{ColumnCutoff: explore.DefaultColumnCutoff},
		Cache:   CacheConfig{Backend: CacheFile, RedisAddr: "localhost:6379"},
		Session: SessionConfig{Backend: SessionMemory, RedisAddr: "localhost:6379", MongoDatabase: appName, TTL: session.DefaultTTL},
		Server:  ServerConfig{Addr: "127.0.0.1:8484"},
		Sources: SourcesConfig{Manifest: filepath.Join("target", "manifest.json"), Catalog: filepath.Join("target", "catalog.json")},
	}
}

// Dir returns the lineageview config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// CacheDir returns the default cache directory (~/.cache/lineageview/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path, or the default path when path is empty.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, or the default path when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Session.Backend {
	case SessionMemory, SessionFile, SessionRedis, SessionMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown session backend %q", c.Session.Backend)
	}
	if c.View.ColumnCutoff < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "column_cutoff must not be negative")
	}
	if c.Layout.HorizontalSpacing < 0 || c.Layout.VerticalSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout spacing must not be negative")
	}
	return nil
}
