package filter

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/model"
)

func TestZeroState(t *testing.T) {
	var s State
	if !s.IsZero() || s.HasFilter() || s.HasSelection() {
		t.Error("zero state should have no filter and no selection")
	}
	if !s.WithoutFilters().Equal(s) {
		t.Error("WithoutFilters() of zero state should be zero")
	}
}

func TestWithCopiesSets(t *testing.T) {
	base := State{}.WithTags("pii").WithExpanded(model.NewIDSet("a"))
	next := base.WithTagToggled("finance").WithExpanded(model.NewIDSet("b"))

	if base.Tags.Has("finance") {
		t.Error("WithTagToggled mutated the original tags")
	}
	if base.Expanded.Has("b") {
		t.Error("WithExpanded mutated the original expanded set")
	}
	if !next.Tags.Has("pii") || !next.Tags.Has("finance") {
		t.Errorf("Tags = %v", next.Tags.Sorted())
	}

	cols := model.NewIDSet("a.x")
	sel := base.WithSelection("a", cols)
	cols.Add("a.y")
	if sel.SelectedColumns.Has("a.y") {
		t.Error("WithSelection should copy the column set")
	}
}

func TestTransitions(t *testing.T) {
	s := State{}.
		WithSearch("orders").
		WithTags("pii").
		WithFocusedColumn("a.x").
		WithRevealed(model.NewIDSet("r")).
		WithSelection("a", model.NewIDSet("a.x")).
		WithExpanded(model.NewIDSet("a", "b")).
		WithColumnFilter("a", "id")

	cleared := s.WithoutSelection()
	if cleared.SelectedTable != "" || cleared.SelectedColumns.Len() != 0 || cleared.FocusedColumn != "" {
		t.Errorf("WithoutSelection() kept selection: %+v", cleared)
	}
	if cleared.Search != "orders" || !cleared.Tags.Has("pii") || !cleared.Revealed.Has("r") {
		t.Errorf("WithoutSelection() dropped filters: %+v", cleared)
	}

	if !s.WithoutFilters().IsZero() {
		t.Error("WithoutFilters() should reset everything")
	}

	collapsed := s.WithCollapsed("a")
	if collapsed.IsExpanded("a") || !collapsed.IsExpanded("b") {
		t.Error("WithCollapsed should remove only the given id")
	}

	if s.ColumnFilter("a") != "id" {
		t.Errorf("ColumnFilter(a) = %q", s.ColumnFilter("a"))
	}
	if got := s.WithColumnFilter("a", "  ").ColumnFilter("a"); got != "" {
		t.Errorf("blank column filter should be removed, got %q", got)
	}

	toggled := State{}.WithTagToggled("x").WithTagToggled("x")
	if toggled.HasTags() {
		t.Error("toggling a tag twice should deselect it")
	}
}

func TestHasSearchIgnoresBlank(t *testing.T) {
	if (State{Search: "   "}).HasSearch() {
		t.Error("blank search should not count")
	}
	if got := (State{Search: "  orders "}).Query(); got != "orders" {
		t.Errorf("Query() = %q", got)
	}
}

func TestStateJSON(t *testing.T) {
	s := State{}.
		WithSearch("orders").
		WithTags("b", "a").
		WithSelection("t", model.NewIDSet("t.x", "t.y")).
		WithColumnFilter("t", "id")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"search":"orders","tags":["a","b"],"selected_table":"t","selected_columns":["t.x","t.y"],"column_filters":{"t":"id"}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Equal(s) {
		t.Errorf("round trip = %+v, want %+v", back, s)
	}
}
