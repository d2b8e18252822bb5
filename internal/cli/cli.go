package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/internal/config"
	"github.com/matzehuels/lineageview/pkg/buildinfo"
	"github.com/matzehuels/lineageview/pkg/cache"
	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completion scripts.
const appName = "lineageview"

// skipConfig marks commands that must run without a readable config file.
const skipConfig = "skip-config"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "lineageview explores table and column lineage",
		Long: `lineageview loads dbt artifacts or a column lineage report and resolves
which tables, columns, and edges to show for a given search, tag filter,
focused column, or selection. Views are laid out left to right by lineage
depth and rendered as JSON, DOT, SVG, or PNG.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded config, or defaults when no command ran the root hook.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Backend Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(c.settings().Cache.Namespace)
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// newCache builds the configured cache backend. A file cache whose directory
// cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings().Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}

	var ch cache.Cache
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, err
		}
		ch = rc
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Debug("caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		ch = fc
	}
	return cache.WithMaxTTL(ch, cfg.TTL), nil
}

// newSessionStore builds the configured session backend.
func (c *CLI) newSessionStore(ctx context.Context) (session.Store, error) {
	cfg := c.settings().Session
	switch cfg.Backend {
	case config.SessionFile:
		return session.NewFileStore(cfg.Dir)
	case config.SessionRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{Addr: cfg.RedisAddr})
	case config.SessionMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	default:
		return session.NewMemoryStore(), nil
	}
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.settings().Cache.Dir; dir != "" {
		return dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// viewDefaults applies config-file view settings on top of pipeline defaults.
func (c *CLI) viewDefaults(opts *pipeline.Options) {
	cfg := c.settings()
	opts.ColumnCutoff = cfg.View.ColumnCutoff
	opts.HorizontalSpacing = cfg.Layout.HorizontalSpacing
	opts.VerticalSpacing = cfg.Layout.VerticalSpacing
	opts.Logger = c.Logger
	opts.SetViewDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
