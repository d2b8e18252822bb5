// Package layout positions lineage tables on a layered grid.
//
// Every table is assigned a depth: 0 for tables with no predecessors and for
// every source table, otherwise one more than its deepest predecessor. Edges
// into a source table are reported in [Result.PinnedEdges]. Tables
// of equal depth form a layer. Layers are spread horizontally by depth and
// each layer is centered vertically around y=0.
//
// # Determinism
//
// [Compute] is a pure function of its input. Members of a layer keep the
// order in which the caller supplied them, so laying out the same subset
// twice yields identical positions.
//
// # Cycles
//
// Lineage graphs are expected to be acyclic, but metadata is not always
// well-formed. Depth resolution tracks the tables currently being resolved;
// an edge that would close a cycle contributes nothing and is reported in
// [Result.BackEdges]. [FindCycles] reports the strongly connected components
// of a graph for diagnostics.
package layout
