package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/cache"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/observability"
	"github.com/matzehuels/lineageview/pkg/source"
)

// Cache key types reported to observability hooks.
const (
	keySnapshot = "snapshot"
	keyView     = "view"
	keyArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → view → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	loaded, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Loaded = loaded
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Tables = loaded.Universe.TableCount()
	result.Stats.Edges = loaded.Universe.EdgeCount()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded metadata",
		"tables", result.Stats.Tables,
		"edges", result.Stats.Edges,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: View
	viewStart := time.Now()
	view, state, viewHit, err := r.ViewWithCacheInfo(ctx, loaded, opts)
	if err != nil {
		return nil, err
	}
	result.View = view
	result.State = state
	result.Stats.ViewTime = time.Since(viewStart)
	result.Stats.VisibleNodes = len(view.Nodes)
	result.Stats.VisibleEdges = len(view.Edges)
	result.CacheInfo.ViewHit = viewHit

	r.Logger.Info("resolved view",
		"branch", view.Branch,
		"nodes", len(view.Nodes),
		"edges", len(view.Edges),
		"duration", result.Stats.ViewTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, view, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo builds the universe and reports whether the parsed
// snapshot came from cache. Snapshot files are read directly.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (loaded *Loaded, hit bool, err error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	name := opts.Snapshot
	if name == "" {
		name = opts.Manifest
		if name == "" {
			name = opts.Lineage
		}
	}
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, name)
	defer func() {
		tables, edges := 0, 0
		if loaded != nil {
			tables, edges = loaded.Universe.TableCount(), loaded.Universe.EdgeCount()
		}
		observability.Pipeline().OnLoadComplete(ctx, name, tables, edges, time.Since(start), err)
	}()

	if opts.Snapshot != "" {
		loaded, err = LoadSnapshot(opts.Snapshot)
		return loaded, false, err
	}

	in, err := source.Read(ctx, opts.Paths())
	if err != nil {
		return nil, false, err
	}
	digest := in.Digest()
	cacheKey := r.Keyer.SnapshotKey(cache.Hash([]byte(digest + "\x00" + opts.DocsBaseURL)))

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			u, meta, err := graph.Unmarshal(data)
			if err == nil && meta.Digest == digest {
				observability.Cache().OnCacheHit(ctx, keySnapshot)
				return &Loaded{Universe: u, Meta: meta, Stats: statsOf(u)}, true, nil
			}
			r.Logger.Debug("discarding unreadable cached snapshot", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keySnapshot)
	}

	res, err := in.Parse(opts.SourceOptions())
	if err != nil {
		return nil, false, err
	}
	loaded = fromSource(res)
	if res.Stats.DroppedEdges > 0 || res.Unresolved > 0 {
		r.Logger.Debug("dropped lineage",
			"edges", res.Stats.DroppedEdges,
			"duplicates", res.Stats.DuplicateEdges,
			"unresolved", res.Unresolved)
	}

	if data, err := graph.Marshal(loaded.Universe, loaded.Meta); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, keySnapshot, len(data))
		}
	}
	return loaded, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*Loaded, error) {
	loaded, _, err := r.LoadWithCacheInfo(ctx, opts)
	return loaded, err
}

// ViewWithCacheInfo resolves the view for opts.State plus opts.Actions and
// reports whether it came from cache.
func (r *Runner) ViewWithCacheInfo(ctx context.Context, loaded *Loaded, opts Options) (explore.View, filter.State, bool, error) {
	if err := opts.ValidateForView(); err != nil {
		return explore.View{}, filter.State{}, false, err
	}

	start := time.Now()
	digest := loaded.Meta.Digest
	cacheKey := ""
	if digest != "" {
		cacheKey = r.Keyer.ViewKey(digest, opts.ViewKeyOpts(stateHash(opts)))
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			var cv cachedView
			if err := json.Unmarshal(data, &cv); err == nil {
				observability.Cache().OnCacheHit(ctx, keyView)
				observability.Pipeline().OnViewComplete(ctx, string(cv.View.Branch), len(cv.View.Nodes), len(cv.View.Edges), time.Since(start))
				return cv.View, cv.State.State(), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyView)
	}

	view, state, err := ResolveView(loaded.Universe, opts)
	if err != nil {
		return explore.View{}, filter.State{}, false, err
	}
	observability.Pipeline().OnViewComplete(ctx, string(view.Branch), len(view.Nodes), len(view.Edges), time.Since(start))

	// Snapshots without a digest are not cached; their identity is unknown.
	if cacheKey != "" {
		if data, err := json.Marshal(cachedView{View: view, State: state.Snapshot()}); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLView); err == nil {
				observability.Cache().OnCacheSet(ctx, keyView, len(data))
			}
		}
	}
	return view, state, false, nil
}

// View is a convenience wrapper that calls ViewWithCacheInfo and discards the cache hit info.
func (r *Runner) View(ctx context.Context, loaded *Loaded, opts Options) (explore.View, error) {
	v, _, _, err := r.ViewWithCacheInfo(ctx, loaded, opts)
	return v, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, v explore.View, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	viewData, err := json.Marshal(v)
	if err != nil {
		return nil, false, err
	}
	viewHash := cache.Hash(viewData)

	artifacts = make(map[string][]byte, len(opts.Formats))
	hit = true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format))
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, keyArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyArtifact)
		hit = false

		data, err := RenderFormat(ctx, v, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyArtifact, len(data))
		}
	}
	return artifacts, hit, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, v explore.View, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, v, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
