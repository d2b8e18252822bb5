// Package filter defines the composite filter state that drives which part
// of a lineage graph is shown, and its projection to a URL query string.
//
// A [State] is a value: every transition returns a new State and sets are
// copied rather than shared, so a State handed to a resolver can never change
// underneath it. The zero State shows everything and highlights nothing.
//
// Only three fields survive in a URL: the focused column, the search text,
// and the tag selection. [Encode] keeps at most one of them, in that order of
// priority. [Sync] implements the write-back rule used by interactive
// frontends: the projection observed on first load is never written back.
package filter
