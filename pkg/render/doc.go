// Package render turns a resolved [explore.View] into output artifacts.
//
// # Formats
//
//   - json: the view records, for web clients ([JSON])
//   - dot: Graphviz source with pinned positions ([nodelink.ToDOT])
//   - png: the DOT source laid out by Graphviz neato ([nodelink.RenderPNG])
//   - svg: a direct drawing of the view ([svg.Render])
//
// All renderers share the node geometry defined here, so an edge leaving a
// column row lands on the same y offset in every format.
//
// [nodelink.ToDOT]: github.com/matzehuels/lineageview/pkg/render/nodelink
// [nodelink.RenderPNG]: github.com/matzehuels/lineageview/pkg/render/nodelink
// [svg.Render]: github.com/matzehuels/lineageview/pkg/render/svg
package render
