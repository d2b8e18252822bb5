package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/render"
)

// Header fill colors per resource kind.
const (
	ModelFill  = "#e0e7ff"
	SourceFill = "#dcfce7"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds column types to rows and the database/schema to headers.
	Detailed bool
}

// ToDOT converts a view to Graphviz DOT with pinned node positions.
// The y axis is flipped because Graphviz grows upward.
func ToDOT(v explore.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=plain, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	idx := render.NodeIndex(v)
	for _, n := range v.Nodes {
		h := render.NodeHeight(n)
		// pos is the node center.
		cx := n.X + render.NodeWidth/2
		cy := -(n.Y + h/2)
		fmt.Fprintf(&buf, "  %q [pos=\"%.1f,%.1f!\", label=<%s>];\n", n.ID, cx, cy, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		src, ok1 := idx[e.Source]
		dst, ok2 := idx[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n",
			endpoint(src, e.SourceHandle, "e"),
			endpoint(dst, e.TargetHandle, "w"),
			strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// endpoint returns the DOT node reference for an edge end, with a port when
// the handle is a drawn column.
func endpoint(n explore.NodeView, handle, side string) string {
	if handle != model.HandleTableIn && handle != model.HandleTableOut {
		for i, c := range n.Columns {
			if c.ID == handle {
				return fmt.Sprintf("%q:%q:%s", n.ID, port(i), side)
			}
		}
	}
	return fmt.Sprintf("%q:%q:%s", n.ID, "header", side)
}

func port(i int) string { return fmt.Sprintf("c%d", i) }

func fmtLabel(n explore.NodeView, detailed bool) string {
	fill := ModelFill
	if n.Kind == model.KindSource {
		fill = SourceFill
	}
	border := "1"
	if n.Selected {
		border = "3"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<TABLE BORDER="%s" CELLBORDER="0" CELLSPACING="0" CELLPADDING="4" WIDTH="%d" BGCOLOR="white">`,
		border, int(render.NodeWidth))

	title := "<B>" + html.EscapeString(n.Label) + "</B>"
	if detailed && (n.Database != "" || n.Schema != "") {
		title += `<BR/><FONT POINT-SIZE="9">` + html.EscapeString(strings.Trim(n.Database+"."+n.Schema, ".")) + "</FONT>"
	}
	fmt.Fprintf(&b, `<TR><TD PORT="header" BGCOLOR="%s" HEIGHT="%d">%s</TD></TR>`, fill, int(render.HeaderHeight), title)

	for i, c := range n.Columns {
		text := html.EscapeString(c.Name)
		if detailed && c.Type != "" {
			text += ` <FONT COLOR="#64748b">` + html.EscapeString(c.Type) + "</FONT>"
		}
		if c.Selected || c.Focused {
			text = "<B>" + text + "</B>"
		}
		fmt.Fprintf(&b, `<TR><TD PORT="%s" ALIGN="LEFT" HEIGHT="%d">%s</TD></TR>`, port(i), int(render.RowHeight), text)
	}
	if n.HiddenColumns > 0 {
		fmt.Fprintf(&b, `<TR><TD ALIGN="LEFT" HEIGHT="%d"><I>+%d more</I></TD></TR>`, int(render.RowHeight), n.HiddenColumns)
	}
	b.WriteString("</TABLE>")
	return b.String()
}

func fmtEdgeAttrs(e explore.EdgeView) []string {
	attrs := []string{
		fmt.Sprintf("id=%q", e.ID),
		fmt.Sprintf("color=%q", e.Style.Stroke),
		fmt.Sprintf("penwidth=%.1f", e.Style.Width),
	}
	if e.Style.Dash != "" {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderPNG lays out DOT source with neato and renders it to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderSVG lays out DOT source with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
