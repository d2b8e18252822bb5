package explore

import (
	"reflect"
	"sort"
	"testing"

	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/resolve"
)

func TestViewNoFilter(t *testing.T) {
	c := New(testUniverse(t), Options{})
	v := c.View()

	if len(v.Nodes) != 5 {
		t.Fatalf("len(Nodes) = %d, want 5", len(v.Nodes))
	}
	if v.Branch != resolve.BranchAll || v.Query != "" {
		t.Errorf("Branch = %q, Query = %q", v.Branch, v.Query)
	}
	if v.Total.Tables != 5 || v.Total.Edges != 6 {
		t.Errorf("Total = %+v", v.Total)
	}

	w, _ := v.Node("W")
	if len(w.Columns) != DefaultColumnCutoff || w.HiddenColumns != 2 {
		t.Errorf("W columns = %d, hidden = %d", len(w.Columns), w.HiddenColumns)
	}
	a, _ := v.Node("A")
	c2, _ := v.Node("C")
	if a.Depth != 0 || c2.Depth != 2 || c2.X != 2*layout.DefaultHorizontalSpacing {
		t.Errorf("A depth %d, C depth %d x %v", a.Depth, c2.Depth, c2.X)
	}
	for _, n := range v.Nodes {
		if n.Seed {
			t.Errorf("node %s marked as seed without a filter", n.ID)
		}
	}
}

func TestViewSearch(t *testing.T) {
	c := New(testUniverse(t), Options{})
	_ = c.SetSearch("b")
	v := c.View()

	ids := map[string]bool{}
	for _, n := range v.Nodes {
		ids[n.ID] = true
	}
	if !ids["A"] || !ids["B"] || !ids["C"] || !ids["W"] || ids["D"] {
		t.Errorf("visible nodes = %v", ids)
	}
	if b, _ := v.Node("B"); !b.Seed {
		t.Error("B should be marked as seed")
	}
	if v.Query != "search=b" {
		t.Errorf("Query = %q", v.Query)
	}
}

func TestViewFocusedColumns(t *testing.T) {
	c := New(testUniverse(t), Options{})
	_ = c.FocusColumn(col("B", "x"))
	v := c.View()

	b, _ := v.Node("B")
	if len(b.Columns) != 1 || b.Columns[0].ID != col("B", "x") || !b.Columns[0].Focused {
		t.Errorf("B columns = %+v", b.Columns)
	}
	w, _ := v.Node("W")
	if len(w.Columns) != 1 || w.Columns[0].ID != col("W", "c11") {
		t.Errorf("W columns = %+v, want only the connected column", w.Columns)
	}
	cNode, _ := v.Node("C")
	if len(cNode.Columns) != 1 || cNode.Columns[0].ID != col("C", "w") {
		t.Errorf("C should fall back to its default columns, got %+v", cNode.Columns)
	}
}

func TestViewColumnFilterAndExpand(t *testing.T) {
	c := New(testUniverse(t), Options{})
	_ = c.SetColumnFilter("W", "c1")
	v := c.View()
	w, _ := v.Node("W")
	if len(w.Columns) != 2 || w.HiddenColumns != 10 {
		t.Errorf("filtered W = %d columns, %d hidden", len(w.Columns), w.HiddenColumns)
	}

	_ = c.ToggleExpand("W")
	w, _ = c.View().Node("W")
	if len(w.Columns) != 12 || !w.Expanded {
		t.Errorf("expanded W = %d columns", len(w.Columns))
	}
}

func TestViewEdgesOrderedByZ(t *testing.T) {
	c := New(testUniverse(t), Options{})
	_ = c.SelectColumn(col("A", "y"))
	v := c.View()

	last := v.Edges[len(v.Edges)-1]
	if last.ID != "column:A.y->B.x" || last.Style.Highlight != resolve.HighlightColumn {
		t.Errorf("highlighted edge should be drawn last, got %s", last.ID)
	}
	if last.SourceHandle != col("A", "y") || last.TargetHandle != col("B", "x") {
		t.Errorf("handles = %s, %s", last.SourceHandle, last.TargetHandle)
	}
	if a, _ := v.Node("A"); !a.Columns[0].Selected {
		t.Error("A.y should be marked selected")
	}
}

func TestRenderMatchesController(t *testing.T) {
	u := testUniverse(t)
	st := filter.State{}.WithTags("finance")
	c := New(u, Options{})
	c.SetState(st)

	a := c.View()
	b := Render(u, st, Options{})
	if len(a.Nodes) != len(b.Nodes) || a.Query != b.Query {
		t.Error("Render and Controller.View disagree")
	}
}

func visibleIDs(v View) []string {
	ids := make([]string, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestViewExpansionStaysWithinOneHop(t *testing.T) {
	t.Run("expanded table hidden under focus", func(t *testing.T) {
		c := New(testUniverse(t), Options{})
		_ = c.ToggleExpand("D")
		_ = c.FocusColumn(col("A", "y"))
		if got := visibleIDs(c.View()); !reflect.DeepEqual(got, []string{"A", "B", "C", "W"}) {
			t.Errorf("visible = %v, want the focus seed and its neighbors", got)
		}
	})
	t.Run("cleared selection leaves search neighborhood", func(t *testing.T) {
		c := New(testUniverse(t), Options{})
		_ = c.SetSearch("A")
		_ = c.SelectTable("B")
		if got := visibleIDs(c.View()); !reflect.DeepEqual(got, []string{"A", "B"}) {
			t.Errorf("visible with selection = %v, want [A B]", got)
		}
		c.ClearSelection()
		if got := visibleIDs(c.View()); !reflect.DeepEqual(got, []string{"A", "B"}) {
			t.Errorf("visible after clear = %v, want [A B]", got)
		}
	})
}
