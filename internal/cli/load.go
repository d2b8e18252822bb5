package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/pipeline"
)

// defaultSnapshot is written by load when --output is not given.
const defaultSnapshot = "graph.json"

// loadCommand creates the load command.
func (c *CLI) loadCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load lineage metadata and write a graph.json snapshot",
		Long: `Load dbt artifacts or a column lineage report and write the resulting
universe of tables, columns, and edges to a graph.json snapshot.

Edges whose endpoints cannot be resolved are dropped and counted. The
snapshot can be passed to every other command with --snapshot.

Examples:
  lineageview load                                   # target/manifest.json + catalog
  lineageview load -m target/manifest.json -l lineage.json
  lineageview load -l lineage.json -o warehouse.json # lineage report only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			if err := src.apply(c, &opts); err != nil {
				return err
			}
			opts.Logger = c.Logger
			if err := opts.ValidateForLoad(); err != nil {
				return err
			}
			return c.runLoad(cmd.Context(), &src, opts, output)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", defaultSnapshot, "snapshot file")

	return cmd
}

func (c *CLI) runLoad(ctx context.Context, src *sourceFlags, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	loaded, hit, err := c.load(ctx, runner, src, opts)
	if err != nil {
		return err
	}
	if err := graph.WriteFile(loaded.Universe, loaded.Meta, output); err != nil {
		return err
	}

	stats := loaded.Stats
	printSuccess("Loaded %s", displayProject(loaded))
	printStats([]count{
		{stats.Tables, "tables"},
		{stats.Columns, "columns"},
		{stats.Edges, "edges"},
	}, hit)
	if stats.DroppedEdges > 0 || loaded.Unresolved > 0 {
		printWarning("Dropped %d edges and %d unresolved references", stats.DroppedEdges, loaded.Unresolved)
	}
	printFile(output)
	printNextStep("Render it", fmt.Sprintf("%s view --snapshot %s -f svg", appName, output))
	return nil
}

func displayProject(loaded *pipeline.Loaded) string {
	if loaded.Meta.Project != "" {
		return loaded.Meta.Project
	}
	return "lineage report"
}
