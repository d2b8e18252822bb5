package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/resolve"
)

// suggestCommand creates the suggest command.
func (c *CLI) suggestCommand() *cobra.Command {
	var (
		src   sourceFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "List tables and columns matching a search query",
		Long: `List search suggestions for a query, the way the explorer's search box
offers them: exact matches first, then prefix matches, then substring
matches, tables before columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateSearch(args[0]); err != nil {
				return err
			}
			var opts pipeline.Options
			if err := src.apply(c, &opts); err != nil {
				return err
			}
			opts.Logger = c.Logger
			if err := opts.ValidateForLoad(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, src.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			loaded, _, err := c.load(ctx, runner, &src, opts)
			if err != nil {
				return err
			}
			printSuggestions(resolve.Suggest(loaded.Universe, args[0], limit))
			return nil
		},
	}

	src.bind(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", resolve.DefaultSuggestLimit, "maximum suggestions")

	return cmd
}

func printSuggestions(suggestions []resolve.Suggestion) {
	if len(suggestions) == 0 {
		printInfo("No matches")
		return
	}
	rows := make([][]string, len(suggestions))
	for i, s := range suggestions {
		rows[i] = []string{string(s.Kind), s.TableLabel, s.ColumnLabel, s.TableID}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Table", "Column", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 3:
				return StyleDim.Padding(0, 1)
			case col == 2:
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(stdout, t.Render())
}
