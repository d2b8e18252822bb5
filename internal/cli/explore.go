package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// minListHeight is the smallest number of table rows shown.
const minListHeight = 5

// =============================================================================
// exploreModel - Interactive lineage browser
// =============================================================================

// exploreModel is the bubbletea model for the explore command. Every key
// press maps to one controller call; the visible tables are re-resolved
// after each call.
type exploreModel struct {
	ctrl   *explore.Controller
	view   explore.View
	nodes  []explore.NodeView
	cursor int
	offset int
	height int

	searching bool
	input     textinput.Model
	status    string
}

func newExploreModel(ctrl *explore.Controller) exploreModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "table or column"
	input.PromptStyle = StyleHighlight
	input.Cursor.SetMode(cursor.CursorStatic)

	m := exploreModel{ctrl: ctrl, height: 15, input: input}
	m.refresh("")
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			if id := m.current(); id != "" {
				m.apply(m.ctrl.SelectTable(id))
			}
		case "e":
			if id := m.current(); id != "" {
				m.apply(m.ctrl.ToggleExpand(id))
			}
		case "/":
			m.searching = true
			m.input.SetValue(m.ctrl.State().Search)
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		case "c":
			m.ctrl.ClearFilters()
			m.apply(nil)
		case "esc":
			m.ctrl.ClearSelection()
			m.apply(nil)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, minListHeight)
		m.clamp()
	}
	return m, nil
}

func (m exploreModel) updateSearch(msg tea.KeyMsg) (exploreModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		m.apply(m.ctrl.SetSearch(strings.TrimSpace(m.input.Value())))
		return m, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply refreshes the view after a controller call, keeping the cursor on
// the same table when it is still visible.
func (m *exploreModel) apply(err error) {
	status := ""
	if err != nil {
		status = errors.UserMessage(err)
	}
	m.refresh(status)
}

func (m *exploreModel) refresh(status string) {
	keep := m.current()
	m.view = m.ctrl.View()
	m.nodes = sortedNodes(m.view.Nodes)
	m.status = status
	m.cursor = 0
	for i, n := range m.nodes {
		if n.ID == keep {
			m.cursor = i
			break
		}
	}
	m.clamp()
}

func (m *exploreModel) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *exploreModel) clamp() {
	m.cursor = max(min(m.cursor, len(m.nodes)-1), 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(min(m.offset, len(m.nodes)-m.height), 0)
}

func (m exploreModel) current() string {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return ""
	}
	return m.nodes[m.cursor].ID
}

// sortedNodes orders nodes the way the layout reads: left to right by depth,
// then top to bottom.
func sortedNodes(nodes []explore.NodeView) []explore.NodeView {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b explore.NodeView) int {
		return cmp.Or(cmp.Compare(a.Depth, b.Depth), cmp.Compare(a.Y, b.Y), strings.Compare(a.ID, b.ID))
	})
	return out
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Lineage"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %d of %d tables · %d edges",
		m.view.Branch, len(m.nodes), m.view.Total.Tables, len(m.view.Edges))))
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  e expand  / search  c clear  esc deselect  q quit"))
	}
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  No tables match"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable())
		b.WriteString("\n")
		b.WriteString(m.renderColumns())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("  " + m.status))
	}
	if q := filter.Encode(m.ctrl.State()); q != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  ?" + q))
	}
	return b.String()
}

func (m exploreModel) renderTable() string {
	end := min(m.offset+m.height, len(m.nodes))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := ""
		switch {
		case n.Selected:
			mark = "●"
		case n.Seed:
			mark = "○"
		}
		cols := strconv.Itoa(len(n.Columns))
		if n.HiddenColumns > 0 {
			cols += fmt.Sprintf(" +%d", n.HiddenColumns)
		}
		rows = append(rows, []string{cursor, mark, n.Label, string(n.Kind), strconv.Itoa(n.Depth), cols, strings.Join(n.Tags, ",")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Table", "Kind", "Depth", "Columns", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			n := m.nodes[idx]
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case idx == m.cursor:
				return base.Inherit(listSelectedStyle)
			case n.Selected:
				return base.Inherit(styleSelected)
			case col == 3 && n.Kind == model.KindSource:
				return base.Inherit(styleSource)
			case col == 1 && n.Seed:
				return base.Inherit(styleSeed)
			case col >= 3:
				return base.Inherit(listDimStyle)
			}
			return base.Inherit(listNormalStyle)
		})

	return t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes)))
}

// renderColumns lists the visible columns of the table under the cursor.
func (m exploreModel) renderColumns() string {
	n := m.nodes[m.cursor]
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(StyleValue.Render(n.ID))
	if n.Expanded {
		b.WriteString(listDimStyle.Render("  (expanded)"))
	}
	b.WriteString("\n")
	for _, c := range n.Columns {
		style := listNormalStyle
		switch {
		case c.Focused:
			style = styleSeed
		case c.Selected:
			style = styleSelected
		}
		b.WriteString("    ")
		b.WriteString(style.Render(c.Name))
		if c.Type != "" {
			b.WriteString(listDimStyle.Render(" " + c.Type))
		}
		b.WriteString("\n")
	}
	if n.HiddenColumns > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("    … %d more (e to expand)", n.HiddenColumns)))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// explore command
// =============================================================================

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		src sourceFlags
		vf  viewFlags
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse lineage interactively in the terminal",
		Long: `Browse lineage interactively. The table list shows the tables visible in
the current state, ordered by lineage depth. Keys:

  ↑/↓ j/k   move the cursor
  enter     select the table and highlight its edges
  e         expand or collapse the table's columns
  /         edit the search text
  c         clear search, tags, and focus
  esc       clear the selection
  q         quit

The final state is printed as a query that 'view --query' accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := vf.state()
			if err != nil {
				return err
			}
			opts := pipeline.Options{State: st, Actions: vf.actions()}
			c.viewDefaults(&opts)
			if vf.cutoff > 0 {
				opts.ColumnCutoff = vf.cutoff
			}
			if err := src.apply(c, &opts); err != nil {
				return err
			}
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

			ctrl := explore.New(loaded.Universe, opts.ExploreOptions())
			ctrl.SetState(opts.State)
			if err := ctrl.ApplyAll(opts.Actions...); err != nil {
				return err
			}

			final, err := tea.NewProgram(newExploreModel(ctrl), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("run explorer: %w", err)
			}
			if fm, ok := final.(exploreModel); ok {
				if q := filter.Encode(fm.ctrl.State()); q != "" {
					printDetail("State: ?%s", q)
					printNextStep("Render it", fmt.Sprintf("%s view -q %q -f svg", appName, q))
				}
			}
			return nil
		},
	}

	src.bind(cmd)
	vf.bind(cmd)

	return cmd
}
