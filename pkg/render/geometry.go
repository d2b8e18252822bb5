package render

import (
	"math"

	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/model"
)

// Node geometry in layout units. Positions from the layout engine are the
// top-left corner of a node.
const (
	NodeWidth    = 280.0
	HeaderHeight = 36.0
	RowHeight    = 22.0
	Padding      = 40.0
)

// NodeHeight returns the drawn height of n: header, one row per visible
// column, and a trailing "+n more" row when columns are hidden.
func NodeHeight(n explore.NodeView) float64 {
	rows := len(n.Columns)
	if n.HiddenColumns > 0 {
		rows++
	}
	return HeaderHeight + float64(rows)*RowHeight
}

// HandleY returns the y offset of a connection point relative to the top of
// n. Table handles and columns that are not drawn attach to the header.
func HandleY(n explore.NodeView, handle string) float64 {
	if handle != model.HandleTableIn && handle != model.HandleTableOut {
		for i, c := range n.Columns {
			if c.ID == handle {
				return HeaderHeight + float64(i)*RowHeight + RowHeight/2
			}
		}
	}
	return HeaderHeight / 2
}

// Box is an axis-aligned rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Bounds returns the padded box enclosing every node of v.
// An empty view yields a padded box around the origin.
func Bounds(v explore.View) Box {
	if len(v.Nodes) == 0 {
		return Box{-Padding, -Padding, Padding, Padding}
	}
	b := Box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, n := range v.Nodes {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X+NodeWidth)
		b.MaxY = math.Max(b.MaxY, n.Y+NodeHeight(n))
	}
	b.MinX -= Padding
	b.MinY -= Padding
	b.MaxX += Padding
	b.MaxY += Padding
	return b
}

// NodeIndex maps node ids to nodes.
func NodeIndex(v explore.View) map[string]explore.NodeView {
	idx := make(map[string]explore.NodeView, len(v.Nodes))
	for _, n := range v.Nodes {
		idx[n.ID] = n
	}
	return idx
}
