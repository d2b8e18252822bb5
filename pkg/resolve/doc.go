// Package resolve derives what a lineage view shows from a graph snapshot and
// a filter state.
//
// Every function here is pure: it reads a [model.Universe] or an edge list
// and a [filter.State], allocates its result, and retains nothing. Results
// are recomputed from scratch on every call, so calling twice with the same
// input yields the same output. All functions run in time linear in the
// number of tables and edges.
//
// The package covers four concerns:
//   - Neighbors: tables or columns one edge away from a table or column
//   - Visibility: which tables, edges, and columns a filter state displays
//   - Highlight: the render style of every edge for a selection
//   - Suggestions: search completions for tables and columns
package resolve
