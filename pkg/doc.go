// Package pkg provides the core libraries for lineageview.
//
// # Overview
//
// lineageview loads the table and column lineage of a dbt project (or of a
// standalone column lineage report) and decides, for a given filter state,
// which tables, columns, and edges a lineage diagram should show and where.
// The pkg directory is organized into four areas:
//
//  1. Domain: [model], [filter], [resolve], [layout], [explore]
//  2. Input and output: [source], [graph], [render]
//  3. Infrastructure: [cache], [session], [observability], [errors], [buildinfo]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The data flow for one view:
//
//	manifest.json + catalog.json + lineage report   (or graph.json)
//	         ↓
//	    [source] parse and build the universe
//	         ↓
//	    [explore] apply actions to a filter state
//	         ↓
//	    [resolve] visibility, columns, edge highlights
//	         ↓
//	    [layout] depth columns, vertical stacking
//	         ↓
//	    [render] JSON, DOT, SVG, PNG
//
// # Quick Start
//
//	res, err := source.Load(ctx, source.Paths{
//	    Manifest: "target/manifest.json",
//	    Catalog:  "target/catalog.json",
//	}, source.Options{})
//	if err != nil {
//	    return err
//	}
//
//	c := explore.New(res.Universe, explore.Options{})
//	_ = c.SetSearch("orders")
//	_ = c.SelectTable("model.shop.orders")
//	view := c.View()
//
//	out, err := svg.Bytes(view, svg.Options{})
//
// # Main Packages
//
// [model] - Tables, columns, edges, and the immutable universe built from
// them. Edges whose endpoints are unknown are dropped and counted.
//
// [filter] - The filter state (search, tags, focused column, selection,
// expanded and revealed tables) and its URL query encoding.
//
// [resolve] - Pure functions deciding table visibility, visible columns,
// edge highlight styles, and search suggestions.
//
// [layout] - Longest-path depth assignment with cycle tolerance and the
// grid placement of visible tables.
//
// [explore] - The controller that applies user actions to a state and
// resolves views.
//
// [pipeline] - Load, view, and render stages with caching keyed by the
// metadata digest and the state.
//
// [cache] and [session] - File, Redis, and MongoDB backends for cached
// stages and server-side explore sessions.
package pkg
