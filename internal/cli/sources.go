package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/source"
)

// sourceFlags are the metadata input flags shared by every command that
// loads lineage. Unset flags fall back to the [sources] config section.
type sourceFlags struct {
	project  string
	manifest string
	catalog  string
	lineage  string
	snapshot string
	docsURL  string
	refresh  bool
	noCache  bool
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "dbt project directory; reads dbt_project.yml to find the artifacts")
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "dbt manifest.json (default from config)")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "dbt catalog.json (default from config)")
	cmd.Flags().StringVarP(&f.lineage, "lineage", "l", "", "column lineage report")
	cmd.Flags().StringVarP(&f.snapshot, "snapshot", "s", "", "graph.json written by 'load' (replaces the metadata files)")
	cmd.Flags().StringVar(&f.docsURL, "docs-url", "", "base URL of the dbt docs site")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore the cached snapshot")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply fills the load options. An explicit lineage report without a
// manifest loads the report alone instead of the configured dbt artifacts.
// A project directory, from --project or the config, replaces the manifest
// and catalog defaults.
func (f *sourceFlags) apply(c *CLI, opts *pipeline.Options) error {
	src := c.settings().Sources
	opts.Refresh = f.refresh
	opts.DocsBaseURL = firstNonEmpty(f.docsURL, src.DocsBaseURL)

	if f.snapshot != "" {
		opts.Snapshot = f.snapshot
		return nil
	}
	explicit := f.manifest != "" || f.catalog != ""
	if f.lineage != "" && !explicit && f.project == "" {
		opts.Lineage = f.lineage
		return nil
	}
	opts.Lineage = firstNonEmpty(f.lineage, src.Lineage)

	if dir := firstNonEmpty(f.project, src.Project); dir != "" && !explicit {
		p, err := source.ReadProject(dir)
		if err != nil {
			return err
		}
		paths := p.Paths()
		opts.Manifest, opts.Catalog = paths.Manifest, paths.Catalog
		c.Logger.Debug("using dbt project", "name", p.Name, "target", p.Target())
		return nil
	}

	opts.Manifest = firstNonEmpty(f.manifest, src.Manifest)
	opts.Catalog = firstNonEmpty(f.catalog, src.Catalog)
	if !explicit && opts.Catalog != "" && !fileExists(opts.Catalog) {
		// The default catalog is optional; dbt only writes it on "docs generate".
		opts.Catalog = ""
	}
	return nil
}

func (f *sourceFlags) describe(opts pipeline.Options) string {
	switch {
	case opts.Snapshot != "":
		return opts.Snapshot
	case opts.Manifest != "":
		return opts.Manifest
	default:
		return opts.Lineage
	}
}

// load runs the load stage with a spinner and reports what was read.
func (c *CLI) load(ctx context.Context, runner *pipeline.Runner, f *sourceFlags, opts pipeline.Options) (*pipeline.Loaded, bool, error) {
	done := timed(c.Logger, "Loaded metadata")
	spinner := newSpinner(ctx, fmt.Sprintf("Loading %s...", f.describe(opts))).Start()

	loaded, hit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.Fail("Load failed")
		return nil, false, err
	}
	spinner.Stop()
	done("tables", loaded.Universe.TableCount(),
		"edges", loaded.Universe.EdgeCount(),
		"cached", hit)
	for _, w := range loaded.Warnings {
		c.Logger.Warn(w)
	}
	return loaded, hit, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
