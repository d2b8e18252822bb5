package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/pipeline"
)

// maxListed bounds the tables printed per finding.
const maxListed = 10

// report summarizes metadata health.
type report struct {
	Tables       int
	Columns      int
	TableEdges   int
	ColumnEdges  int
	Dropped      int
	Duplicates   int
	Unresolved   int
	MaxDepth     int
	Cycles       [][]string
	Isolated     []string
	NoColumns    []string
	Warnings     []string
	FromSnapshot bool
}

// Problems counts findings that make --strict fail.
func (r report) Problems() int {
	return len(r.Cycles) + r.Dropped + r.Unresolved
}

func diagnose(loaded *pipeline.Loaded) report {
	u := loaded.Universe
	tables, edges := u.Tables(), u.Edges()
	r := report{
		Tables:     u.TableCount(),
		Columns:    u.ColumnCount(),
		Dropped:    loaded.Stats.DroppedEdges,
		Duplicates: loaded.Stats.DuplicateEdges,
		Unresolved: loaded.Unresolved,
		Warnings:   loaded.Warnings,
		Cycles:     layout.FindCycles(tables, edges),
	}

	connected := model.NewIDSet()
	for _, e := range edges {
		if e.Kind == model.EdgeKindColumn {
			r.ColumnEdges++
		} else {
			r.TableEdges++
		}
		connected.Add(e.Source, e.Target)
	}
	for _, t := range tables {
		if !connected.Has(t.ID) {
			r.Isolated = append(r.Isolated, t.ID)
		}
		if len(t.Columns) == 0 {
			r.NoColumns = append(r.NoColumns, t.ID)
		}
	}
	for _, d := range layout.Depths(tables, edges) {
		r.MaxDepth = max(r.MaxDepth, d)
	}
	return r
}

// doctorCommand creates the doctor command.
func (c *CLI) doctorCommand() *cobra.Command {
	var (
		src    sourceFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check lineage metadata for dropped edges, cycles, and isolated tables",
		Long: `Load lineage metadata and report what the views will not show:
edges dropped because an endpoint is unknown, references the lineage
analyzer could not resolve, lineage cycles, and tables without any edge.

With --strict the command fails when edges were dropped, references were
unresolved, or cycles were found.`,
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
			return c.runDoctor(cmd.Context(), &src, opts, strict)
		},
	}

	src.bind(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when problems are found")

	return cmd
}

func (c *CLI) runDoctor(ctx context.Context, src *sourceFlags, opts pipeline.Options, strict bool) error {
	// Dropped edges are only known on a fresh parse.
	src.noCache = true
	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	loaded, _, err := c.load(ctx, runner, src, opts)
	if err != nil {
		return err
	}
	r := diagnose(loaded)
	r.FromSnapshot = opts.Snapshot != ""
	printReport(r)

	if strict && r.Problems() > 0 {
		return errors.New(errors.ErrCodeInvalidMetadata, "%d problems found", r.Problems())
	}
	return nil
}

func printReport(r report) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := [][]string{
		{"tables", strconv.Itoa(r.Tables)},
		{"columns", strconv.Itoa(r.Columns)},
		{"table edges", strconv.Itoa(r.TableEdges)},
		{"column edges", strconv.Itoa(r.ColumnEdges)},
		{"max depth", strconv.Itoa(r.MaxDepth)},
		{"dropped edges", strconv.Itoa(r.Dropped)},
		{"duplicate edges", strconv.Itoa(r.Duplicates)},
		{"unresolved refs", strconv.Itoa(r.Unresolved)},
		{"cycles", strconv.Itoa(len(r.Cycles))},
		{"isolated tables", strconv.Itoa(len(r.Isolated))},
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Check", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 && row >= 5 && row < len(rows) && rows[row][1] != "0" {
				return base.Foreground(colorYellow)
			}
			return base
		})
	fmt.Fprintln(stdout, t.Render())

	if r.FromSnapshot {
		printDetail("Snapshots do not record dropped edges or unresolved references")
	}
	for _, cyc := range r.Cycles {
		printWarning("Cycle: %s", joinLimited(cyc))
	}
	if len(r.Isolated) > 0 {
		printInfo("Isolated: %s", joinLimited(r.Isolated))
	}
	if len(r.NoColumns) > 0 {
		printInfo("Without columns: %s", joinLimited(r.NoColumns))
	}
	for _, w := range r.Warnings {
		printWarning("%s", w)
	}
	if r.Problems() == 0 {
		printSuccess("No problems found")
	}
}

func joinLimited(ids []string) string {
	if len(ids) <= maxListed {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(ids[:maxListed], ", "), len(ids)-maxListed)
}
