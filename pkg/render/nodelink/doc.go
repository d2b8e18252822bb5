// Package nodelink renders lineage views as Graphviz node-link diagrams.
//
// # Overview
//
// [ToDOT] emits DOT source in which every table is an HTML-like record with
// one port per visible column, so column edges attach to their rows. Node
// positions come from the layout engine and are pinned (pos="x,y!"), so
// Graphviz only routes edges and never moves nodes.
//
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process PNG
// rendering with the neato engine, which honors pinned positions.
package nodelink
