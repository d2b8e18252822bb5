package explore

import (
	"slices"
	"strings"

	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/resolve"
)

// ColumnView is one rendered column of a node.
type ColumnView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Selected bool   `json:"selected,omitempty"`
	Focused  bool   `json:"focused,omitempty"`
}

// NodeView is one positioned table.
type NodeView struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Kind          model.ResourceKind `json:"kind"`
	Database      string             `json:"database,omitempty"`
	Schema        string             `json:"schema,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	DocsURL       string             `json:"docs_url,omitempty"`
	X             float64            `json:"x"`
	Y             float64            `json:"y"`
	Depth         int                `json:"depth"`
	Selected      bool               `json:"selected,omitempty"`
	Expanded      bool               `json:"expanded,omitempty"`
	Seed          bool               `json:"seed,omitempty"`
	Columns       []ColumnView       `json:"columns"`
	HiddenColumns int                `json:"hidden_columns"`
	ColumnFilter  string             `json:"column_filter,omitempty"`
}

// EdgeView is one styled edge between two visible nodes.
type EdgeView struct {
	ID           string            `json:"id"`
	Kind         model.EdgeKind    `json:"kind"`
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	SourceHandle string            `json:"source_handle"`
	TargetHandle string            `json:"target_handle"`
	Style        resolve.EdgeStyle `json:"style"`
}

// View is the complete render input for one state.
type View struct {
	Nodes     []NodeView     `json:"nodes"`
	Edges     []EdgeView     `json:"edges"` // Ordered by z-index, then universe order
	Branch    resolve.Branch `json:"branch"`
	Query     string         `json:"query"`
	BackEdges []string       `json:"back_edges,omitempty"`
	Total     Totals         `json:"total"`
}

// Totals counts the whole universe, for "showing n of m" summaries.
type Totals struct {
	Tables int `json:"tables"`
	Edges  int `json:"edges"`
}

// Node returns the node with the given ID.
func (v View) Node(id string) (NodeView, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// Edge returns the edge with the given ID.
func (v View) Edge(id string) (EdgeView, bool) {
	for _, e := range v.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return EdgeView{}, false
}

// View resolves the current state into positioned, styled records.
func (c *Controller) View() View {
	return Render(c.u, c.st, c.opts)
}

// Render resolves st against u without a controller.
func Render(u *model.Universe, st filter.State, opts Options) View {
	opts = opts.withDefaults()
	vis := resolve.Visibility(u, st)
	tables := vis.VisibleTables(u)
	edges := vis.VisibleEdges(u)
	lay := layout.Compute(tables, edges, opts.Layout)
	sel := resolve.SelectionOf(st)

	v := View{
		Nodes:     make([]NodeView, 0, len(tables)),
		Edges:     make([]EdgeView, 0, len(edges)),
		Branch:    vis.Branch,
		Query:     filter.Encode(st),
		BackEdges: lay.BackEdges,
		Total:     Totals{Tables: u.TableCount(), Edges: u.EdgeCount()},
	}

	for _, t := range tables {
		pos, _ := lay.Position(t.ID)
		cols := visibleColumns(t, st, vis, opts.ColumnCutoff)
		n := NodeView{
			ID:            t.ID,
			Label:         t.Label,
			Kind:          t.Kind,
			Database:      t.Database,
			Schema:        t.Schema,
			Tags:          t.Tags,
			DocsURL:       t.DocsURL,
			X:             pos.X,
			Y:             pos.Y,
			Depth:         pos.Depth,
			Selected:      st.SelectedTable == t.ID,
			Expanded:      st.IsExpanded(t.ID),
			Seed:          vis.Branch != resolve.BranchAll && vis.Seed.Has(t.ID),
			HiddenColumns: len(t.Columns) - len(cols),
			ColumnFilter:  st.ColumnFilter(t.ID),
		}
		n.Columns = make([]ColumnView, len(cols))
		for i, col := range cols {
			n.Columns[i] = ColumnView{
				ID:       col.ID,
				Name:     col.Name,
				Type:     col.Type,
				Selected: st.SelectedColumns.Has(col.ID),
				Focused:  st.FocusedColumn == col.ID,
			}
		}
		v.Nodes = append(v.Nodes, n)
	}

	for _, e := range edges {
		src, dst := e.Handles()
		v.Edges = append(v.Edges, EdgeView{
			ID:           e.ID,
			Kind:         e.Kind,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: src,
			TargetHandle: dst,
			Style:        resolve.StyleFor(e, sel),
		})
	}
	slices.SortStableFunc(v.Edges, func(a, b EdgeView) int {
		return a.Style.ZIndex - b.Style.ZIndex
	})
	return v
}

// visibleColumns picks the columns a node renders: the focus override if the
// resolver set one, all columns when expanded, the columns matching the local
// filter, or else the first cutoff columns.
func visibleColumns(t *model.Table, st filter.State, vis resolve.VisibilityResult, cutoff int) []model.Column {
	if ids, ok := vis.FocusedColumns(t.ID); ok {
		set := model.NewIDSet(ids...)
		return slices.DeleteFunc(slices.Clone(t.Columns), func(c model.Column) bool { return !set.Has(c.ID) })
	}
	if st.IsExpanded(t.ID) {
		return t.Columns
	}
	if q := strings.ToLower(strings.TrimSpace(st.ColumnFilter(t.ID))); q != "" {
		return slices.DeleteFunc(slices.Clone(t.Columns), func(c model.Column) bool {
			return !strings.Contains(strings.ToLower(c.Name), q)
		})
	}
	if len(t.Columns) > cutoff {
		return t.Columns[:cutoff]
	}
	return t.Columns
}
