// Package server exposes lineage views over HTTP.
//
// The API is stateless for one-off views (GET /api/graph with the same query
// parameters the browser URL carries) and stateful for explorers: a session
// stores the filter state and every POSTed controller action moves it forward.
// Metadata is loaded once at startup and, with watching enabled, reloaded
// whenever one of the source files changes.
package server

import (
	"context"
	"hash/fnv"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/session"
	"github.com/matzehuels/lineageview/pkg/source"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8484"

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = 10 * time.Minute
	sessionStripes  = 64
)

// Config holds configuration for the server.
type Config struct {
	// Runner executes and caches the pipeline. Required.
	Runner *pipeline.Runner

	// Options carries the metadata sources and the view defaults.
	// State, Actions and Formats are set per request.
	Options pipeline.Options

	// Sessions stores explorer sessions. Defaults to an in-memory store.
	Sessions   session.Store
	SessionTTL time.Duration

	Addr  string
	Watch bool

	// AllowedOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS headers.
	AllowedOrigin string

	Logger *log.Logger
}

// Server serves the lineage API.
type Server struct {
	cfg Config

	mu     sync.RWMutex
	loaded *pipeline.Loaded

	// Sessions hash onto a fixed set of locks, so expired ids leave nothing behind.
	locks [sessionStripes]sync.Mutex
}

// New creates a server. Metadata is not loaded until [Server.Reload] or
// [Server.Serve] is called.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{cfg: cfg}
}

// Reload loads the configured metadata and swaps it in. Requests already in
// flight finish against the universe they started with.
func (s *Server) Reload(ctx context.Context) error {
	loaded, err := s.cfg.Runner.Load(ctx, s.cfg.Options)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()
	s.cfg.Logger.Info("metadata loaded",
		"tables", loaded.Universe.TableCount(),
		"edges", loaded.Universe.EdgeCount(),
		"digest", shortDigest(loaded.Meta.Digest))
	return nil
}

// Loaded returns the universe currently being served, or nil before the first load.
func (s *Server) Loaded() *pipeline.Loaded {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Serve loads metadata if needed, then serves until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if s.Loaded() == nil {
		if err := s.Reload(ctx); err != nil {
			return err
		}
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watch(egctx)
		})
	}

	eg.Go(func() error {
		return s.sweep(egctx, sweepInterval)
	})

	eg.Go(func() error {
		s.cfg.Logger.Info("serving lineage API", "addr", "http://"+s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", s.cfg.Addr)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.cfg.Logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// sweep removes expired sessions every interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func (s *Server) sweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.cfg.Sessions.Cleanup(ctx); err != nil && ctx.Err() == nil {
				s.cfg.Logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

// watch reloads metadata whenever a source file changes. A failed reload
// keeps the previous universe.
func (s *Server) watch(ctx context.Context) error {
	files := s.cfg.Options.Paths().Files()
	if s.cfg.Options.Snapshot != "" {
		files = []string{s.cfg.Options.Snapshot}
	}
	s.cfg.Logger.Info("watching metadata", "files", len(files))
	return source.Watch(ctx, files, source.WatchOptions{
		OnChange: func() {
			s.cfg.Logger.Debug("metadata changed, reloading")
			if err := s.Reload(ctx); err != nil {
				s.cfg.Logger.Error("reload failed", "error", err)
			}
		},
		OnError: func(err error) {
			s.cfg.Logger.Warn("watcher error", "error", err)
		},
	})
}

// lockSession serializes read-modify-write cycles on one session.
func (s *Server) lockSession(id string) func() {
	m := s.sessionLock(id)
	m.Lock()
	return m.Unlock
}

func (s *Server) sessionLock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%sessionStripes]
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
