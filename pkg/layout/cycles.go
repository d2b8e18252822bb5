package layout

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/lineageview/pkg/model"
)

// FindCycles returns the strongly connected components of the table graph
// that contain more than one table. Members of a component are ordered as in
// tables, and components are ordered by their first member.
func FindCycles(tables []*model.Table, edges []model.Edge) [][]string {
	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(tables))
	order := make(map[string]int, len(tables))
	nodeToID := make(map[int64]string, len(tables))

	for i, t := range tables {
		if t == nil {
			continue
		}
		if _, dup := idToNode[t.ID]; dup {
			continue
		}
		n := g.NewNode()
		g.AddNode(n)
		idToNode[t.ID] = n.ID()
		nodeToID[n.ID()] = t.ID
		order[t.ID] = i
	}

	for _, e := range edges {
		u, okU := idToNode[e.Source]
		v, okV := idToNode[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, len(scc))
		for i, n := range scc {
			ids[i] = nodeToID[n.ID()]
		}
		slices.SortFunc(ids, func(a, b string) int { return order[a] - order[b] })
		cycles = append(cycles, ids)
	}
	slices.SortFunc(cycles, func(a, b []string) int { return order[a[0]] - order[b[0]] })
	return cycles
}

// IsAcyclic reports whether the table graph has no cycles.
func IsAcyclic(tables []*model.Table, edges []model.Edge) bool {
	return len(FindCycles(tables, edges)) == 0
}
