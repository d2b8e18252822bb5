package layout

import (
	"slices"

	"github.com/matzehuels/lineageview/pkg/model"
)

// Default spacing between layers and between members of a layer. Wide enough
// that collapsed and expanded nodes never overlap.
const (
	DefaultHorizontalSpacing = 480.0
	DefaultVerticalSpacing   = 400.0
)

// Options tunes the grid spacing. Zero values fall back to the defaults.
type Options struct {
	HorizontalSpacing float64
	VerticalSpacing   float64
}

func (o Options) withDefaults() Options {
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = DefaultVerticalSpacing
	}
	return o
}

// Position is the placement of one table.
type Position struct {
	ID    string
	X, Y  float64
	Depth int
	Index int // Position within its layer
}

// Result is the outcome of [Compute].
type Result struct {
	Positions []Position // One per input table, in input order
	Layers    [][]string // Table IDs grouped by depth, in input order
	BackEdges []string   // IDs of edges ignored because they close a cycle

	// PinnedEdges lists edges into source tables. Sources stay at depth 0,
	// so these edges do not increase depth from source to target.
	PinnedEdges []string

	index map[string]int
}

// Position returns the placement of a table.
func (r Result) Position(id string) (Position, bool) {
	i, ok := r.index[id]
	if !ok {
		return Position{}, false
	}
	return r.Positions[i], true
}

// Depth returns the depth of a table, or -1 if it was not laid out.
func (r Result) Depth(id string) int {
	if p, ok := r.Position(id); ok {
		return p.Depth
	}
	return -1
}

// MaxDepth returns the deepest layer index, or -1 for an empty result.
func (r Result) MaxDepth() int {
	return len(r.Layers) - 1
}

// Compute assigns a position to every table. Edges referencing tables outside
// the input and self-loops are ignored. Duplicate table IDs keep the first
// occurrence.
//
// Every edge not listed in BackEdges or PinnedEdges points to a strictly
// deeper table.
func Compute(tables []*model.Table, edges []model.Edge, opts Options) Result {
	opts = opts.withDefaults()

	r := newResolver(tables, edges)
	for _, id := range r.order {
		r.depth(id)
	}

	result := Result{
		Positions: make([]Position, 0, len(r.order)),
		index:     make(map[string]int, len(r.order)),
	}

	for _, id := range r.order {
		d := r.depths[id]
		for len(result.Layers) <= d {
			result.Layers = append(result.Layers, nil)
		}
		result.Layers[d] = append(result.Layers[d], id)
	}

	slot := make(map[string]int, len(r.order))
	for _, layer := range result.Layers {
		for i, id := range layer {
			slot[id] = i
		}
	}

	for _, id := range r.order {
		d := r.depths[id]
		i := slot[id]
		n := len(result.Layers[d])
		result.index[id] = len(result.Positions)
		result.Positions = append(result.Positions, Position{
			ID:    id,
			X:     float64(d) * opts.HorizontalSpacing,
			Y:     (float64(i) - float64(n-1)/2) * opts.VerticalSpacing,
			Depth: d,
			Index: i,
		})
	}

	result.BackEdges = r.backEdges
	result.PinnedEdges = r.pinned
	return result
}

type pred struct {
	table string
	edge  string
}

// resolver computes memoized depths with white/gray/black coloring so a
// cycle is cut at the edge that closes it.
type resolver struct {
	order     []string
	sources   map[string]bool
	preds     map[string][]pred
	depths    map[string]int
	state     map[string]int
	backEdges []string
	seenBack  map[string]bool
	pinned    []string
}

const (
	white = iota
	gray
	black
)

func newResolver(tables []*model.Table, edges []model.Edge) *resolver {
	r := &resolver{
		sources:  make(map[string]bool),
		preds:    make(map[string][]pred),
		depths:   make(map[string]int, len(tables)),
		state:    make(map[string]int, len(tables)),
		seenBack: make(map[string]bool),
	}

	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		if t == nil || known[t.ID] {
			continue
		}
		known[t.ID] = true
		r.order = append(r.order, t.ID)
		if t.IsSource() {
			r.sources[t.ID] = true
		}
	}

	for _, e := range edges {
		if e.Source == e.Target || !known[e.Source] || !known[e.Target] {
			continue
		}
		if r.sources[e.Target] {
			if !slices.Contains(r.pinned, e.ID) {
				r.pinned = append(r.pinned, e.ID)
			}
			continue
		}
		r.preds[e.Target] = append(r.preds[e.Target], pred{table: e.Source, edge: e.ID})
	}
	return r
}

func (r *resolver) depth(id string) int {
	switch r.state[id] {
	case black:
		return r.depths[id]
	case gray:
		// Callers check for gray before recursing.
		return 0
	}

	r.state[id] = gray
	d := 0
	for _, p := range r.preds[id] {
		if r.state[p.table] == gray {
			r.markBack(p.edge)
			continue
		}
		if pd := r.depth(p.table) + 1; pd > d {
			d = pd
		}
	}
	r.depths[id] = d
	r.state[id] = black
	return d
}

func (r *resolver) markBack(edgeID string) {
	if r.seenBack[edgeID] {
		return
	}
	r.seenBack[edgeID] = true
	r.backEdges = append(r.backEdges, edgeID)
}

// Depths returns only the depth of every table, keyed by ID.
func Depths(tables []*model.Table, edges []model.Edge) map[string]int {
	r := newResolver(tables, edges)
	for _, id := range r.order {
		r.depth(id)
	}
	out := make(map[string]int, len(r.depths))
	for _, id := range r.order {
		out[id] = r.depths[id]
	}
	return out
}

// Bounds returns the extent of all positions. An empty result yields zeros.
func (r Result) Bounds() (minX, minY, maxX, maxY float64) {
	if len(r.Positions) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = r.Positions[0].X, r.Positions[0].Y
	maxX, maxY = minX, minY
	for _, p := range r.Positions[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// IDs returns the laid out table IDs in input order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Positions))
	for i, p := range r.Positions {
		ids[i] = p.ID
	}
	return ids
}
