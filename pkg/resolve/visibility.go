package resolve

import (
	"strings"

	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/model"
)

// Branch names the seed rule that produced a visibility result.
type Branch string

const (
	BranchFocus  Branch = "focus"  // Focused column lineage
	BranchSearch Branch = "search" // Search text
	BranchTags   Branch = "tags"   // Tag selection
	BranchAll    Branch = "all"    // No filter, everything shown
)

// VisibilityResult is the outcome of [Visibility].
type VisibilityResult struct {
	Branch Branch
	Seed   model.IDSet // Tables selected by the filter before expansion
	Tables model.IDSet // Tables displayed
	Edges  model.IDSet // Edges whose endpoints are both displayed

	// Columns overrides the column list of a table while a column is focused.
	// Tables without an entry fall back to their default column view.
	Columns map[string][]string
}

// Visibility decides which tables, edges, and columns st displays.
//
// Exactly one seed rule applies, in priority order:
//  1. A focused column seeds the tables at either end of its column edges,
//     or only its owner when it has no lineage.
//  2. Search text seeds tables whose label equals the query or that have a
//     column whose name contains it, ignoring case. Otherwise selected tags
//     seed tables carrying any of them. Revealed tables are added either way.
//  3. Without a filter every table is seeded and displayed.
//
// For rules 1 and 2 the displayed set is the seed plus tables one edge away
// from it. Expanded tables only change how many columns a table lists, never
// whether it is displayed. Identifiers in st that do not exist in u are
// ignored.
func Visibility(u *model.Universe, st filter.State) VisibilityResult {
	edges := u.Edges()
	res := VisibilityResult{}

	focus := ""
	if st.HasFocus() {
		if _, ok := u.ColumnOwner(st.FocusedColumn); ok {
			focus = st.FocusedColumn
		}
	}

	switch {
	case focus != "":
		res.Branch = BranchFocus
		res.Seed = FocusSeed(u, focus, edges)
	case st.HasSearch():
		res.Branch = BranchSearch
		res.Seed = SearchSeed(u, st.Query())
		addKnown(u, res.Seed, st.Revealed)
	case st.HasTags():
		res.Branch = BranchTags
		res.Seed = TagSeed(u, st.Tags)
		addKnown(u, res.Seed, st.Revealed)
	default:
		res.Branch = BranchAll
		res.Seed = model.NewIDSet(u.TableIDs()...)
	}

	if res.Branch == BranchAll {
		res.Tables = res.Seed.Clone()
	} else {
		res.Tables = ExpandOneHop(res.Seed, edges)
	}

	res.Edges = model.NewIDSet()
	for _, e := range edges {
		if res.Tables.Has(e.Source) && res.Tables.Has(e.Target) {
			res.Edges.Add(e.ID)
		}
	}

	if focus != "" {
		res.Columns = focusColumns(u, res.Tables, ColumnNeighbors(focus, edges))
	}
	return res
}

// FocusSeed returns the tables at either end of the column edges touching
// columnID, or only its owner when there are none.
func FocusSeed(u *model.Universe, columnID string, edges []model.Edge) model.IDSet {
	seed := NeighborsOfColumn(columnID, edges)
	if seed.Len() == 0 {
		if owner, ok := u.ColumnOwner(columnID); ok {
			seed.Add(owner)
		}
	}
	return seed
}

// SearchSeed returns tables whose label equals query, or that have a column
// whose name contains query. Both comparisons ignore case.
func SearchSeed(u *model.Universe, query string) model.IDSet {
	seed := model.NewIDSet()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return seed
	}
	for _, t := range u.Tables() {
		if MatchesSearch(t, q) {
			seed.Add(t.ID)
		}
	}
	return seed
}

// MatchesSearch reports whether t matches an already lowercased query.
func MatchesSearch(t *model.Table, q string) bool {
	if strings.ToLower(t.Label) == q {
		return true
	}
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return true
		}
	}
	return false
}

// TagSeed returns tables carrying at least one of tags.
func TagSeed(u *model.Universe, tags model.IDSet) model.IDSet {
	seed := model.NewIDSet()
	for _, t := range u.Tables() {
		if t.HasAnyTag(tags) {
			seed.Add(t.ID)
		}
	}
	return seed
}

func addKnown(u *model.Universe, dst, ids model.IDSet) {
	for id := range ids {
		if u.HasTable(id) {
			dst.Add(id)
		}
	}
}

func focusColumns(u *model.Universe, tables, connected model.IDSet) map[string][]string {
	out := make(map[string][]string)
	for _, t := range u.Tables() {
		if !tables.Has(t.ID) {
			continue
		}
		var cols []string
		for _, c := range t.Columns {
			if connected.Has(c.ID) {
				cols = append(cols, c.ID)
			}
		}
		if len(cols) > 0 {
			out[t.ID] = cols
		}
	}
	return out
}

// VisibleEdges returns the displayed edges in universe order.
func (r VisibilityResult) VisibleEdges(u *model.Universe) []model.Edge {
	return u.EdgesWithin(r.Edges)
}

// VisibleTables returns the displayed tables in universe order.
func (r VisibilityResult) VisibleTables(u *model.Universe) []*model.Table {
	return u.Subset(r.Tables)
}

// FocusedColumns returns the column override for a table and whether one is set.
func (r VisibilityResult) FocusedColumns(tableID string) ([]string, bool) {
	cols, ok := r.Columns[tableID]
	return cols, ok
}
