// Package model defines the immutable graph model behind lineageview: tables
// (dbt models and sources), their columns, and the edges between them.
//
// # Overview
//
// A [Universe] is a static snapshot of everything the metadata loader found.
// It is built once with a [Builder], never mutated afterwards, and replaced
// wholesale on reload. All view state (visibility, highlight, positions) is
// derived from a Universe by pure functions in sibling packages and attached
// to presentation copies, never to the model itself.
//
// # Edges
//
// Two edge kinds exist:
//
//   - [EdgeKindTable]: a coarse dependency between two tables ("orders is
//     built from raw_orders").
//   - [EdgeKindColumn]: fine-grained lineage between one column in each table.
//
// The kind is an explicit field set at construction time by [TableEdge] and
// [ColumnEdge]. Edge IDs are derived from the endpoints, so deriving the same
// relation twice yields the same ID and the Builder keeps only one copy:
//
//	b := model.NewBuilder()
//	_ = b.AddTable(model.Table{ID: "source.shop.raw.orders", Kind: model.KindSource})
//	_ = b.AddTable(model.Table{ID: "model.shop.orders", Kind: model.KindModel})
//	b.AddEdge(model.TableEdge("source.shop.raw.orders", "model.shop.orders"))
//	b.AddEdge(model.TableEdge("source.shop.raw.orders", "model.shop.orders")) // dropped
//	u, stats := b.Build()
//
// # Data integrity
//
// Edges that reference unknown tables, or columns that do not belong to the
// table named by the endpoint, are dropped by [Builder.Build] and counted in
// [BuildStats]. They never surface as errors.
//
// # Concurrency
//
// A built Universe is read-only and safe for concurrent use. A Builder is not.
package model
