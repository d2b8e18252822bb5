// Package pipeline provides the load → view → render pipeline behind the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read dbt artifacts or a lineage report (or a graph.json
//     snapshot) and freeze them into a universe
//  2. View: apply a filter state and controller actions, resolve
//     visibility and highlighting, and compute the layout
//  3. Render: encode the view as JSON, DOT, SVG, or PNG
//
// Each stage is cached by content hash through a [cache.Cache], so an
// unchanged manifest and an unchanged state never recompute anything.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: "target/manifest.json",
//	    State:    filter.State{}.WithSearch("orders"),
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineageview/pkg/cache"
	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/render"
	"github.com/matzehuels/lineageview/pkg/source"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatJSON

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options
	Manifest    string `json:"manifest,omitempty"`
	Catalog     string `json:"catalog,omitempty"`
	Lineage     string `json:"lineage,omitempty"`
	Snapshot    string `json:"snapshot,omitempty"` // graph.json written by "lineageview load"
	DocsBaseURL string `json:"docs_base_url,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// View options
	State             filter.State     `json:"-"`
	Actions           []explore.Action `json:"actions,omitempty"`
	ColumnCutoff      int              `json:"column_cutoff,omitempty"`
	HorizontalSpacing float64          `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64          `json:"vertical_spacing,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Column types and schemas in DOT/SVG

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Loaded is a frozen universe plus what is known about where it came from.
type Loaded struct {
	Universe   *model.Universe
	Meta       graph.Meta
	Stats      model.BuildStats
	Unresolved int
	Warnings   []string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Loaded    *Loaded
	State     filter.State // State after applying Options.Actions
	View      explore.View
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tables       int
	Edges        int
	VisibleNodes int
	VisibleEdges int
	LoadTime     time.Duration
	ViewTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the universe came from the snapshot cache
	ViewHit   bool // Whether the view came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForView(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that exactly one kind of input is configured.
func (o *Options) ValidateForLoad() error {
	if o.Snapshot != "" {
		if o.Manifest != "" || o.Lineage != "" || o.Catalog != "" {
			return errors.New(errors.ErrCodeInvalidInput, "snapshot cannot be combined with metadata files")
		}
	} else if err := o.Paths().Validate(); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// SetViewDefaults sets default values for view resolution.
func (o *Options) SetViewDefaults() {
	if o.ColumnCutoff <= 0 {
		o.ColumnCutoff = explore.DefaultColumnCutoff
	}
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = layout.DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = layout.DefaultVerticalSpacing
	}
	o.setLogger()
}

// ValidateForView validates actions and sets view defaults.
func (o *Options) ValidateForView() error {
	o.SetViewDefaults()
	if err := errors.ValidateSearch(o.State.Search); err != nil {
		return err
	}
	for _, a := range o.Actions {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
}

// ValidateForRender validates formats and sets render defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return render.ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Paths returns the metadata file paths.
func (o *Options) Paths() source.Paths {
	return source.Paths{Manifest: o.Manifest, Catalog: o.Catalog, Lineage: o.Lineage}
}

// SourceOptions returns the metadata conversion options.
func (o *Options) SourceOptions() source.Options {
	return source.Options{DocsBaseURL: o.DocsBaseURL}
}

// ExploreOptions returns controller options.
func (o *Options) ExploreOptions() explore.Options {
	return explore.Options{
		ColumnCutoff: o.ColumnCutoff,
		Layout: layout.Options{
			HorizontalSpacing: o.HorizontalSpacing,
			VerticalSpacing:   o.VerticalSpacing,
		},
	}
}

// ViewKeyOpts returns cache key options for a view.
func (o *Options) ViewKeyOpts(stateHash string) cache.ViewKeyOpts {
	return cache.ViewKeyOpts{
		State:             stateHash,
		ColumnCutoff:      o.ColumnCutoff,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
