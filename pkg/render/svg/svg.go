// Package svg draws lineage views directly from layout positions.
//
// Unlike the Graphviz path in [nodelink], nothing is re-laid out: nodes sit
// exactly where the layout engine put them and edges are cubic curves
// between column rows.
//
// [nodelink]: github.com/matzehuels/lineageview/pkg/render/nodelink
package svg

import (
	"bytes"
	"fmt"
	"html"
	"io"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/render"
)

// Palette.
const (
	colorBackdrop   = "#ffffff"
	colorStroke     = "#cbd5e1"
	colorSelected   = "#6366f1"
	colorModelHead  = "#e0e7ff"
	colorSourceHead = "#dcfce7"
	colorText       = "#0f172a"
	colorSubtle     = "#64748b"
	colorFocus      = "#fff7ed"
)

// Options configures SVG output.
type Options struct {
	// Background fills the canvas. Empty leaves it transparent.
	Background bool
	// Types shows column types next to names.
	Types bool
}

// Render writes v as SVG to w.
func Render(w io.Writer, v explore.View, opts Options) error {
	box := render.Bounds(v)
	width, height := int(box.Width()), int(box.Height())

	canvas := svgo.New(w)
	canvas.Startview(width, height, int(box.MinX), int(box.MinY), width, height)
	canvas.Def()
	canvas.Marker("arrow", 8, 4, 8, 8, `orient="auto"`)
	canvas.Path("M 0 0 L 8 4 L 0 8 z", "fill:context-stroke")
	canvas.MarkerEnd()
	canvas.DefEnd()

	if opts.Background {
		canvas.Rect(int(box.MinX), int(box.MinY), width, height, "fill:"+colorBackdrop)
	}

	idx := render.NodeIndex(v)
	// Edges are already ordered by z-index, so highlighted edges draw last.
	for _, e := range v.Edges {
		src, ok1 := idx[e.Source]
		dst, ok2 := idx[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		drawEdge(canvas, e, src, dst)
	}

	for _, n := range v.Nodes {
		drawNode(canvas, n, opts)
	}

	canvas.End()
	return nil
}

// Bytes renders v to a byte slice.
func Bytes(v explore.View, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, v, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawEdge(canvas *svgo.SVG, e explore.EdgeView, src, dst explore.NodeView) {
	sx := int(src.X + render.NodeWidth)
	sy := int(src.Y + render.HandleY(src, e.SourceHandle))
	ex := int(dst.X)
	ey := int(dst.Y + render.HandleY(dst, e.TargetHandle))
	bend := (ex - sx) / 2
	if bend < 40 {
		bend = 40
	}

	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f", e.Style.Stroke, e.Style.Width)
	if e.Style.Dash != "" {
		style += ";stroke-dasharray:" + e.Style.Dash
	}
	canvas.Group(attr("id", e.ID), attr("class", "edge "+string(e.Kind)))
	canvas.Title(e.ID)
	canvas.Bezier(sx, sy, sx+bend, sy, ex-bend, ey, ex, ey, style, `marker-end="url(#arrow)"`)
	canvas.Gend()
}

func drawNode(canvas *svgo.SVG, n explore.NodeView, opts Options) {
	x, y := int(n.X), int(n.Y)
	w, h := int(render.NodeWidth), int(render.NodeHeight(n))
	rowH := int(render.RowHeight)
	headH := int(render.HeaderHeight)

	stroke, strokeW := colorStroke, 1
	if n.Selected {
		stroke, strokeW = colorSelected, 3
	}
	head := colorModelHead
	if n.Kind == model.KindSource {
		head = colorSourceHead
	}

	canvas.Group(attr("id", n.ID), attr("class", "node "+string(n.Kind)))
	if n.DocsURL != "" {
		canvas.Title(n.DocsURL)
	}
	canvas.Roundrect(x, y, w, h, 6, 6, fmt.Sprintf("fill:#ffffff;stroke:%s;stroke-width:%d", stroke, strokeW))
	canvas.Roundrect(x, y, w, headH, 6, 6, "fill:"+head)
	canvas.Text(x+10, y+headH/2+5, n.Label,
		fmt.Sprintf("fill:%s;font-size:14px;font-family:sans-serif;font-weight:bold", colorText))

	for i, c := range n.Columns {
		ry := y + headH + i*rowH
		if c.Focused || c.Selected {
			canvas.Rect(x+1, ry, w-2, rowH, "fill:"+colorFocus)
		}
		weight := "normal"
		if c.Selected {
			weight = "bold"
		}
		canvas.Text(x+10, ry+rowH/2+4, c.Name,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;font-weight:%s", colorText, weight))
		if opts.Types && c.Type != "" {
			canvas.Text(x+w-10, ry+rowH/2+4, c.Type,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:end", colorSubtle))
		}
	}
	if n.HiddenColumns > 0 {
		ry := y + headH + len(n.Columns)*rowH
		canvas.Text(x+10, ry+rowH/2+4, fmt.Sprintf("+%d more", n.HiddenColumns),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;font-style:italic", colorSubtle))
	}
	canvas.Gend()
}

// attr formats an escaped XML attribute for svgo's variadic style arguments.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}
