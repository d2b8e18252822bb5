package resolve

import "github.com/matzehuels/lineageview/pkg/model"

// NeighborsOfTable returns id together with every table connected to it by an
// edge of either kind, in either direction.
func NeighborsOfTable(id string, edges []model.Edge) model.IDSet {
	out := model.NewIDSet(id)
	for _, e := range edges {
		if e.TouchesTable(id) {
			out.Add(e.Other(id))
		}
	}
	return out
}

// NeighborsOfColumn returns both endpoint tables of every column edge whose
// source or target column is columnID. The result is empty for a column
// without lineage.
func NeighborsOfColumn(columnID string, edges []model.Edge) model.IDSet {
	out := model.NewIDSet()
	for _, e := range edges {
		if e.TouchesColumn(columnID) {
			out.Add(e.Source, e.Target)
		}
	}
	return out
}

// ColumnNeighbors returns columnID together with every column connected to it
// by a column edge.
func ColumnNeighbors(columnID string, edges []model.Edge) model.IDSet {
	out := model.NewIDSet(columnID)
	for _, e := range edges {
		if !e.TouchesColumn(columnID) {
			continue
		}
		if e.SourceColumn == columnID {
			out.Add(e.TargetColumn)
		} else {
			out.Add(e.SourceColumn)
		}
	}
	return out
}

// ExpandOneHop returns ids together with every table directly connected to
// any of them. It never expands transitively.
func ExpandOneHop(ids model.IDSet, edges []model.Edge) model.IDSet {
	out := ids.Clone()
	for _, e := range edges {
		switch {
		case ids.Has(e.Source):
			out.Add(e.Target)
		case ids.Has(e.Target):
			out.Add(e.Source)
		}
	}
	return out
}

// ConnectingColumns returns, for a selected column, every column across an
// edge from it mapped to the table that owns it. Used to decide which
// neighbor tables must be expanded so the selected edge stays visible.
func ConnectingColumns(columnID string, edges []model.Edge) map[string][]string {
	out := make(map[string][]string)
	for _, e := range edges {
		if !e.TouchesColumn(columnID) {
			continue
		}
		if e.SourceColumn == columnID {
			out[e.Target] = append(out[e.Target], e.TargetColumn)
		} else {
			out[e.Source] = append(out[e.Source], e.SourceColumn)
		}
	}
	return out
}
