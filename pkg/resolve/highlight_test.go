package resolve

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/lineageview/pkg/model"
)

func TestStyleFor(t *testing.T) {
	te := model.TableEdge("A", "B")
	ce := colEdge("A", "y", "B", "x")

	tests := []struct {
		name string
		edge model.Edge
		sel  Selection
		want EdgeStyle
	}{
		{
			name: "default column",
			edge: ce,
			want: EdgeStyle{Stroke: ColorColumnDefault, Width: 1, ZIndex: ZBack},
		},
		{
			name: "default table",
			edge: te,
			want: EdgeStyle{Stroke: ColorTableDefault, Width: 1.5, Dash: "6 4", ZIndex: ZBack},
		},
		{
			name: "column highlight",
			edge: ce,
			sel:  Selection{Columns: model.NewIDSet(col("B", "x"))},
			want: EdgeStyle{Stroke: ColorColumnHighlight, Width: 2.5, Animated: true, ZIndex: ZHighlight, Highlight: HighlightColumn},
		},
		{
			name: "table highlight",
			edge: te,
			sel:  Selection{Table: "B"},
			want: EdgeStyle{Stroke: ColorTableHighlight, Width: 3, ZIndex: ZHighlight, Highlight: HighlightTable},
		},
		{
			name: "column edge ignores table selection",
			edge: ce,
			sel:  Selection{Table: "B"},
			want: EdgeStyle{Stroke: ColorColumnDefault, Width: 1, ZIndex: ZBack},
		},
		{
			name: "table edge ignores column selection",
			edge: te,
			sel:  Selection{Columns: model.NewIDSet(col("B", "x"))},
			want: EdgeStyle{Stroke: ColorTableDefault, Width: 1.5, Dash: "6 4", ZIndex: ZBack},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StyleFor(tt.edge, tt.sel); got != tt.want {
				t.Errorf("StyleFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHighlightSelectedTable(t *testing.T) {
	u := chainUniverse(t)
	// Selecting B selects all of its columns and the table.
	tbl, _ := u.Table("B")
	sel := Selection{Table: "B", Columns: model.NewIDSet(tbl.ColumnIDs()...)}
	styles := Highlight(u.Edges(), sel)

	for _, e := range u.Edges() {
		s := styles[e.ID]
		if e.IsColumn() && s.Highlight == HighlightTable {
			t.Errorf("column edge %s received table highlight", e.ID)
		}
		if e.IsTable() && e.TouchesTable("B") && s.Highlight != HighlightTable {
			t.Errorf("table edge %s should be table-highlighted", e.ID)
		}
	}
}

func TestHighlightExclusivityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u := randomUniverse(t)
		ids := u.TableIDs()
		sel := Selection{
			Table:   rapid.SampledFrom(ids).Draw(t, "table"),
			Columns: model.NewIDSet(model.ColumnID(rapid.SampledFrom(ids).Draw(t, "colTable"), "c1")),
		}
		for id, s := range Highlight(u.Edges(), sel) {
			e, _ := u.Edge(id)
			if s.Highlight == HighlightColumn && !e.IsColumn() {
				t.Fatalf("table edge %s got column highlight", id)
			}
			if s.Highlight == HighlightTable && !e.IsTable() {
				t.Fatalf("column edge %s got table highlight", id)
			}
		}
	})
}
