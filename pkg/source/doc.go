// Package source turns data-pipeline metadata into a [model.Universe].
//
// Three inputs are understood:
//   - a dbt manifest.json, which provides models, seeds, snapshots, sources,
//     their table dependencies, tags, columns, and descriptions
//   - an optional dbt catalog.json, which adds declared column types and the
//     physical column order
//   - an optional column lineage report (lineage_report.json) produced by a
//     SQL lineage analyzer, which adds column-to-column edges
//
// A lineage report can also be loaded on its own. Every relation that is a
// lineage target becomes a model table; relations only ever read from become
// source tables.
//
// [Load] reads all configured files concurrently and freezes the result. Any
// read or parse failure aborts the whole load: a partial graph is never
// returned. Lineage that references unknown relations or columns is counted
// and skipped. [Watch] reports changes to the input files so callers can
// reload.
package source
