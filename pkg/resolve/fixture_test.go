package resolve

import (
	"testing"

	"github.com/matzehuels/lineageview/pkg/model"
)

type tableSpec struct {
	id   string
	cols []string
	tags []string
}

func buildUniverse(t testing.TB, tables []tableSpec, edges ...model.Edge) *model.Universe {
	t.Helper()
	b := model.NewBuilder()
	for _, ts := range tables {
		cols := make([]model.Column, len(ts.cols))
		for i, c := range ts.cols {
			cols[i] = model.Column{Name: c}
		}
		if err := b.AddTable(model.Table{ID: ts.id, Label: ts.id, Columns: cols, Tags: ts.tags}); err != nil {
			t.Fatalf("AddTable(%s) error = %v", ts.id, err)
		}
	}
	for _, e := range edges {
		b.AddEdge(e)
	}
	u, _ := b.Build()
	return u
}

func col(table, name string) string { return model.ColumnID(table, name) }

func colEdge(st, sc, tt, tc string) model.Edge {
	return model.ColumnEdge(st, col(st, sc), tt, col(tt, tc))
}

// chainUniverse is A -> B -> C with column lineage along the chain, plus an
// unconnected D.
func chainUniverse(t testing.TB) *model.Universe {
	return buildUniverse(t,
		[]tableSpec{
			{id: "A", cols: []string{"y"}, tags: []string{"raw"}},
			{id: "B", cols: []string{"x", "z"}, tags: []string{"finance"}},
			{id: "C", cols: []string{"w"}},
			{id: "D", cols: []string{"q"}, tags: []string{"marketing"}},
		},
		model.TableEdge("A", "B"),
		model.TableEdge("B", "C"),
		colEdge("A", "y", "B", "x"),
		colEdge("B", "z", "C", "w"),
	)
}
