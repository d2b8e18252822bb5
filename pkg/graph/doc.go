// Package graph provides the snapshot file format for lineage graphs.
//
// A snapshot is the frozen result of a metadata load: every table with its
// columns and every deduplicated edge. `lineageview load` writes one so that
// later commands and the HTTP server can start without re-reading dbt
// artifacts.
//
// # Format
//
// Snapshots are indented JSON:
//
//	{
//	  "version": 1,
//	  "project": "shop",
//	  "digest": "9f2c...",
//	  "tables": [
//	    {"id": "model.shop.orders", "label": "orders", "kind": "model",
//	     "columns": [{"name": "order_id"}]}
//	  ],
//	  "edges": [
//	    {"kind": "table", "source": "model.shop.stg_orders", "target": "model.shop.orders"}
//	  ]
//	}
//
// Table order is preserved. Column and edge IDs are not stored; they are
// derived again when the snapshot is read, so a snapshot always yields the
// same universe as the load that produced it.
//
// # Usage
//
//	data, err := graph.Marshal(u, graph.Meta{Project: "shop"})
//	u, meta, err := graph.ReadFile("graph.json")
package graph
