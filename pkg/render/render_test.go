package render

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/model"
)

func testView() explore.View {
	return explore.View{
		Nodes: []explore.NodeView{
			{ID: "a", Label: "a", X: 0, Y: -100, Columns: []explore.ColumnView{{ID: "a.x", Name: "x"}}},
			{ID: "b", Label: "b", X: 480, Y: 0, HiddenColumns: 2, Columns: []explore.ColumnView{
				{ID: "b.x", Name: "x"}, {ID: "b.y", Name: "y"},
			}},
		},
		Edges: []explore.EdgeView{
			{ID: "column:a.x->b.y", Kind: model.EdgeKindColumn, Source: "a", Target: "b", SourceHandle: "a.x", TargetHandle: "b.y"},
		},
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "svg", "dot", "png"}); err != nil {
		t.Errorf("ValidateFormats(all) = %v", err)
	}
	err := ValidateFormats([]string{"svg", "pdf"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats(pdf) = %v, want INVALID_FORMAT", err)
	}
}

func TestNodeHeight(t *testing.T) {
	v := testView()
	tests := []struct {
		node explore.NodeView
		want float64
	}{
		{v.Nodes[0], HeaderHeight + RowHeight},
		{v.Nodes[1], HeaderHeight + 3*RowHeight},
		{explore.NodeView{}, HeaderHeight},
	}
	for _, tt := range tests {
		if got := NodeHeight(tt.node); got != tt.want {
			t.Errorf("NodeHeight(%q) = %v, want %v", tt.node.ID, got, tt.want)
		}
	}
}

func TestHandleY(t *testing.T) {
	b := testView().Nodes[1]
	tests := []struct {
		handle string
		want   float64
	}{
		{"b.x", HeaderHeight + RowHeight/2},
		{"b.y", HeaderHeight + RowHeight + RowHeight/2},
		{"b.hidden", HeaderHeight / 2},
		{model.HandleTableIn, HeaderHeight / 2},
	}
	for _, tt := range tests {
		if got := HandleY(b, tt.handle); got != tt.want {
			t.Errorf("HandleY(%q) = %v, want %v", tt.handle, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	b := Bounds(testView())
	want := Box{
		MinX: -Padding,
		MinY: -100 - Padding,
		MaxX: 480 + NodeWidth + Padding,
		MaxY: HeaderHeight + 3*RowHeight + Padding,
	}
	if b != want {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
	if empty := Bounds(explore.View{}); empty.Width() != 2*Padding || empty.Height() != 2*Padding {
		t.Errorf("Bounds(empty) = %+v", empty)
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(testView())
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("JSON() should end with a newline")
	}
	var back explore.View
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Nodes) != 2 || back.Edges[0].TargetHandle != "b.y" {
		t.Errorf("decoded view = %+v", back)
	}
}
