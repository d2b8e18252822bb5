package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/render"
)

// defaultOutputBase names output files when --output is not given.
const defaultOutputBase = "lineage"

// viewFlags describe the starting filter state and the actions applied on top.
type viewFlags struct {
	query        string
	search       string
	tags         string
	column       string
	selectTable  string
	selectColumn string
	expand       []string
	reveal       []string
	cutoff       int
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", `URL query to start from (e.g. "search=orders")`)
	cmd.Flags().StringVar(&f.search, "search", "", "show tables named like this, or with a matching column")
	cmd.Flags().StringVarP(&f.tags, "tags", "t", "", "show tables carrying any of these tags (comma-separated)")
	cmd.Flags().StringVarP(&f.column, "column", "c", "", "focus the lineage of one column (table.column id)")
	cmd.Flags().StringVar(&f.selectTable, "select-table", "", "select a table and highlight its edges")
	cmd.Flags().StringVar(&f.selectColumn, "select-column", "", "select a column and highlight its edges")
	cmd.Flags().StringSliceVar(&f.expand, "expand", nil, "tables to show with all columns (repeatable)")
	cmd.Flags().StringSliceVar(&f.reveal, "reveal", nil, "tables to add to a search or tag filter (repeatable)")
	cmd.Flags().IntVar(&f.cutoff, "cutoff", 0, "columns shown per collapsed table (default from config)")
}

// state builds the starting state. --query wins over the individual filter
// flags, which follow the same priority as the URL: column, search, tags.
func (f *viewFlags) state() (filter.State, error) {
	if f.query != "" {
		return filter.Decode(f.query)
	}
	v := url.Values{}
	if f.column != "" {
		v.Set(filter.ParamColumn, f.column)
	}
	if f.search != "" {
		v.Set(filter.ParamSearch, f.search)
	}
	if f.tags != "" {
		v.Set(filter.ParamTags, f.tags)
	}
	return filter.FromValues(v)
}

// actions returns the controller actions implied by the selection flags.
// Reveals run before the selection so a revealed table can be selected.
func (f *viewFlags) actions() []explore.Action {
	var out []explore.Action
	for _, id := range f.reveal {
		out = append(out, explore.Action{Type: explore.ActionReveal, ID: id})
	}
	for _, id := range f.expand {
		out = append(out, explore.Action{Type: explore.ActionToggleExpand, ID: id})
	}
	if f.selectTable != "" {
		out = append(out, explore.Action{Type: explore.ActionSelectTable, ID: f.selectTable})
	}
	if f.selectColumn != "" {
		out = append(out, explore.Action{Type: explore.ActionSelectColumn, ID: f.selectColumn})
	}
	return out
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		src        sourceFlags
		vf         viewFlags
		formatsStr string
		output     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Resolve and render one lineage view",
		Long: `Resolve one lineage view and write it to disk.

The starting state comes from --query or the individual filter flags; the
selection flags are then applied as controller actions, exactly like clicks
in the explorer. Views and artifacts are cached by metadata digest and state.

Examples:
  lineageview view --search orders -f svg
  lineageview view --tags finance,pii --select-table model.shop.orders -f svg,png
  lineageview view -q "column=model.shop.orders.total" -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := vf.state()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				State:    st,
				Actions:  vf.actions(),
				Formats:  parseFormats(formatsStr),
				Detailed: detailed,
			}
			c.viewDefaults(&opts)
			if vf.cutoff > 0 {
				opts.ColumnCutoff = vf.cutoff
			}
			if err := src.apply(c, &opts); err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runView(cmd.Context(), &src, opts, output)
		},
	}

	src.bind(cmd)
	vf.bind(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (single format) or base path (multiple); "-" for stdout`)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show column types and schemas (dot, svg, png)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, src *sourceFlags, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	loaded, _, err := c.load(ctx, runner, src, opts)
	if err != nil {
		return err
	}

	done := timed(c.Logger, "Resolved view")
	view, st, viewHit, err := runner.ViewWithCacheInfo(ctx, loaded, opts)
	if err != nil {
		return err
	}
	done("branch", view.Branch, "cached", viewHit)

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", "))).Start()
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, view, opts)
	if err != nil {
		spinner.Fail("Render failed")
		return err
	}
	spinner.Stop()

	if output == "-" {
		return writeStdout(artifacts, opts.Formats)
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s view", view.Branch)
	printStats([]count{
		{len(view.Nodes), fmt.Sprintf("of %d tables", view.Total.Tables)},
		{len(view.Edges), "edges"},
	}, viewHit && renderHit)
	for _, p := range paths {
		printFile(p)
	}
	if q := filter.Encode(st); q != "" {
		printDetail("State: ?%s", q)
	}
	return nil
}

// writeArtifacts writes one file per format. A single format goes to output
// as given; multiple formats share output as a base path with the format
// extension appended.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := outputPath(output, format, len(formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, err
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeStdout(artifacts map[string][]byte, formats []string) error {
	if len(formats) != 1 {
		return fmt.Errorf("stdout output requires exactly one format, got %d", len(formats))
	}
	_, err := os.Stdout.Write(artifacts[formats[0]])
	return err
}

// outputPath derives the file path for format. Known format extensions are
// stripped from output before the format's own extension is added.
func outputPath(output, format string, n int) string {
	if output == "" {
		return defaultOutputBase + render.Extension(format)
	}
	if n == 1 {
		return output
	}
	return basePath(output) + render.Extension(format)
}

func basePath(output string) string {
	ext := filepath.Ext(output)
	for _, f := range render.Formats() {
		if ext == render.Extension(f) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
