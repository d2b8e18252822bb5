package resolve

import (
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/model"
)

// Edge colors.
const (
	ColorColumnHighlight = "#f97316"
	ColorTableHighlight  = "#6366f1"
	ColorColumnDefault   = "#94a3b8"
	ColorTableDefault    = "#cbd5e1"
)

// Z-order of recessed and highlighted edges.
const (
	ZBack      = 0
	ZHighlight = 1000
)

// HighlightKind names the highlight condition that styled an edge.
type HighlightKind string

const (
	HighlightNone   HighlightKind = ""
	HighlightColumn HighlightKind = "column"
	HighlightTable  HighlightKind = "table"
)

// EdgeStyle is the render style of one edge.
type EdgeStyle struct {
	Stroke    string        `json:"stroke"`
	Width     float64       `json:"width"`
	Dash      string        `json:"dash,omitempty"` // SVG dash array, empty for solid
	Animated  bool          `json:"animated"`
	ZIndex    int           `json:"z_index"`
	Highlight HighlightKind `json:"highlight,omitempty"`
}

// Selection is the highlight-relevant part of a filter state.
type Selection struct {
	Table   string      // Selected table, highlights its table edges
	Columns model.IDSet // Selected columns, highlight their column edges
}

// SelectionOf extracts the selection from a filter state.
func SelectionOf(st filter.State) Selection {
	return Selection{Table: st.SelectedTable, Columns: st.SelectedColumns}
}

// StyleFor returns the style of e under sel. Column edges can only receive
// the column highlight and table edges only the table highlight.
func StyleFor(e model.Edge, sel Selection) EdgeStyle {
	switch {
	case e.IsColumn() && (sel.Columns.Has(e.SourceColumn) || sel.Columns.Has(e.TargetColumn)):
		return EdgeStyle{
			Stroke:    ColorColumnHighlight,
			Width:     2.5,
			Animated:  true,
			ZIndex:    ZHighlight,
			Highlight: HighlightColumn,
		}
	case e.IsTable() && sel.Table != "" && e.TouchesTable(sel.Table):
		return EdgeStyle{
			Stroke:    ColorTableHighlight,
			Width:     3,
			ZIndex:    ZHighlight,
			Highlight: HighlightTable,
		}
	case e.IsColumn():
		return EdgeStyle{Stroke: ColorColumnDefault, Width: 1, ZIndex: ZBack}
	default:
		return EdgeStyle{Stroke: ColorTableDefault, Width: 1.5, Dash: "6 4", ZIndex: ZBack}
	}
}

// Highlight styles every edge, keyed by edge ID.
func Highlight(edges []model.Edge, sel Selection) map[string]EdgeStyle {
	out := make(map[string]EdgeStyle, len(edges))
	for _, e := range edges {
		out[e.ID] = StyleFor(e, sel)
	}
	return out
}

// IsHighlighted reports whether the style carries any highlight.
func (s EdgeStyle) IsHighlighted() bool { return s.Highlight != HighlightNone }
