package resolve

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/model"
)

func TestVisibilityNoFilter(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{})

	if res.Branch != BranchAll {
		t.Errorf("Branch = %q, want %q", res.Branch, BranchAll)
	}
	if res.Tables.Len() != 4 || res.Edges.Len() != u.EdgeCount() {
		t.Errorf("visible = %d tables, %d edges; want 4, %d", res.Tables.Len(), res.Edges.Len(), u.EdgeCount())
	}
	if res.Columns != nil {
		t.Errorf("Columns = %v, want nil without focus", res.Columns)
	}
}

func TestVisibilitySearchLabel(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{Search: "b"})

	if res.Branch != BranchSearch {
		t.Errorf("Branch = %q", res.Branch)
	}
	if got := res.Seed.Sorted(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("Seed = %v, want [B]", got)
	}
	if got := res.Tables.Sorted(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Tables = %v, want [A B C]", got)
	}
	for _, id := range []string{"table:A->B", "table:B->C"} {
		if !res.Edges.Has(id) {
			t.Errorf("edge %s should be visible", id)
		}
	}
	if res.Tables.Has("D") {
		t.Error("D is unconnected to B and should stay hidden")
	}
}

func TestVisibilitySearchRules(t *testing.T) {
	u := buildUniverse(t, []tableSpec{
		{id: "orders", cols: []string{"order_id", "amount"}},
		{id: "order_items", cols: []string{"sku"}},
		{id: "customers", cols: []string{"customer_id"}},
	})

	tests := []struct {
		query string
		want  []string
	}{
		{"ORDERS", []string{"orders"}},          // exact label only, not a label substring
		{"order", []string{"orders"}},           // column name substring
		{"ID", []string{"customers", "orders"}}, // case-insensitive substring
		{"nothing", nil},
	}
	for _, tt := range tests {
		got := SearchSeed(u, tt.query).Sorted()
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SearchSeed(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestVisibilitySearchWinsOverTags(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{Search: "b"}.WithTags("marketing"))
	if res.Branch != BranchSearch || res.Tables.Has("D") {
		t.Errorf("search should win over tags: branch=%q tables=%v", res.Branch, res.Tables.Sorted())
	}
}

func TestVisibilityTagsAndRevealed(t *testing.T) {
	u := chainUniverse(t)
	st := filter.State{}.WithTags("raw").WithRevealed(model.NewIDSet("D", "ghost"))
	res := Visibility(u, st)

	if res.Branch != BranchTags {
		t.Errorf("Branch = %q", res.Branch)
	}
	if got := res.Seed.Sorted(); !reflect.DeepEqual(got, []string{"A", "D"}) {
		t.Errorf("Seed = %v, want [A D]", got)
	}
	if got := res.Tables.Sorted(); !reflect.DeepEqual(got, []string{"A", "B", "D"}) {
		t.Errorf("Tables = %v, want [A B D]", got)
	}
	if res.Edges.Has("table:B->C") {
		t.Error("edge to hidden C should not be visible")
	}
}

func TestVisibilityFocusedColumn(t *testing.T) {
	u := buildUniverse(t,
		[]tableSpec{
			{id: "A", cols: []string{"y", "other"}},
			{id: "B", cols: []string{"x", "z"}},
			{id: "C", cols: []string{"w"}},
		},
		colEdge("A", "y", "B", "x"),
	)

	res := Visibility(u, filter.State{FocusedColumn: col("B", "x")})

	if res.Branch != BranchFocus {
		t.Errorf("Branch = %q", res.Branch)
	}
	if got := res.Tables.Sorted(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Tables = %v, want [A B]", got)
	}
	want := map[string][]string{
		"A": {col("A", "y")},
		"B": {col("B", "x")},
	}
	if !reflect.DeepEqual(res.Columns, want) {
		t.Errorf("Columns = %v, want %v", res.Columns, want)
	}
}

func TestVisibilityFocusedIsolatedColumn(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{FocusedColumn: col("D", "q")})

	if got := res.Seed.Sorted(); !reflect.DeepEqual(got, []string{"D"}) {
		t.Errorf("Seed = %v, want owner only", got)
	}
	if got := res.Columns["D"]; !reflect.DeepEqual(got, []string{col("D", "q")}) {
		t.Errorf("Columns[D] = %v", got)
	}
}

func TestVisibilityFocusNeighborWithoutColumns(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{FocusedColumn: col("B", "x")})

	// C is a table-level neighbor of B but has no column on the focused lineage.
	if !res.Tables.Has("C") {
		t.Error("C should be visible as a one-hop neighbor")
	}
	if _, ok := res.FocusedColumns("C"); ok {
		t.Error("C should fall back to the default column view")
	}
}

func TestVisibilityUnknownFocusIgnored(t *testing.T) {
	u := chainUniverse(t)
	res := Visibility(u, filter.State{FocusedColumn: "nope", Search: "b"})
	if res.Branch != BranchSearch {
		t.Errorf("Branch = %q, want search after ignoring unknown focus", res.Branch)
	}
}

func TestVisibilityExpandedDoesNotShowTables(t *testing.T) {
	u := chainUniverse(t)
	for _, st := range []filter.State{
		{Search: "b"},
		{FocusedColumn: model.ColumnID("A", "y")},
		filter.State{}.WithTags("finance"),
	} {
		want := Visibility(u, st).Tables.Sorted()
		got := Visibility(u, st.WithExpanded(model.NewIDSet("D"))).Tables.Sorted()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%+v: expanding D changed tables to %v, want %v", st, got, want)
		}
	}
}

func TestVisibilityDeterministic(t *testing.T) {
	u := chainUniverse(t)
	st := filter.State{}.WithTags("finance")
	a, b := Visibility(u, st), Visibility(u, st)
	if !reflect.DeepEqual(a, b) {
		t.Error("Visibility is not deterministic")
	}
}

func randomUniverse(t *rapid.T) *model.Universe {
	n := rapid.IntRange(1, 15).Draw(t, "tables")
	b := model.NewBuilder()
	ids := make([]string, n)
	tags := []string{"a", "b", "c"}
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
		var tt []string
		if rapid.Bool().Draw(t, "tagged") {
			tt = append(tt, rapid.SampledFrom(tags).Draw(t, "tag"))
		}
		_ = b.AddTable(model.Table{
			ID:      ids[i],
			Columns: []model.Column{{Name: "c0"}, {Name: "c1"}},
			Tags:    tt,
		})
	}
	m := rapid.IntRange(0, 2*n).Draw(t, "edges")
	for range m {
		s := rapid.SampledFrom(ids).Draw(t, "src")
		d := rapid.SampledFrom(ids).Draw(t, "dst")
		if rapid.Bool().Draw(t, "column") {
			sc := rapid.SampledFrom([]string{"c0", "c1"}).Draw(t, "sc")
			dc := rapid.SampledFrom([]string{"c0", "c1"}).Draw(t, "dc")
			b.AddEdge(model.ColumnEdge(s, model.ColumnID(s, sc), d, model.ColumnID(d, dc)))
		} else {
			b.AddEdge(model.TableEdge(s, d))
		}
	}
	u, _ := b.Build()
	return u
}

func TestVisibilityOneHopProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u := randomUniverse(t)
		var st filter.State
		switch rapid.IntRange(0, 2).Draw(t, "branch") {
		case 0:
			id := rapid.SampledFrom(u.TableIDs()).Draw(t, "focus")
			st.FocusedColumn = model.ColumnID(id, "c0")
		case 1:
			st.Search = rapid.SampledFrom([]string{"t1", "T2", "c1", "zzz"}).Draw(t, "search")
		case 2:
			st = st.WithTags(rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "tag"))
		}
		ids := u.TableIDs()
		expanded := rapid.SliceOf(rapid.SampledFrom(ids)).Draw(t, "expanded")
		st = st.WithExpanded(model.NewIDSet(expanded...))
		if rapid.Bool().Draw(t, "selected") {
			st = st.WithSelection(rapid.SampledFrom(ids).Draw(t, "table"), nil)
		}

		res := Visibility(u, st)
		adjacent := ExpandOneHop(res.Seed, u.Edges())
		for id := range res.Tables {
			if !adjacent.Has(id) {
				t.Fatalf("table %s visible but more than one hop from seed %v", id, res.Seed.Sorted())
			}
		}
		for _, e := range u.Edges() {
			want := res.Tables.Has(e.Source) && res.Tables.Has(e.Target)
			if res.Edges.Has(e.ID) != want {
				t.Fatalf("edge %s visibility = %v, want %v", e.ID, !want, want)
			}
		}
	})
}
