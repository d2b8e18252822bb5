package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidTableID is returned by [Builder.AddTable] when the table ID is empty.
	ErrInvalidTableID = errors.New("table ID must not be empty")

	// ErrDuplicateTableID is returned by [Builder.AddTable] when a table with
	// the same ID was already added.
	ErrDuplicateTableID = errors.New("duplicate table ID")

	// ErrDuplicateColumn is returned by [Builder.AddTable] when a table
	// declares the same column name twice, or when a column ID is already
	// owned by another table.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Universe is the immutable node/edge snapshot produced by a load.
//
// The zero value is an empty universe. Use [Builder] to create populated ones.
type Universe struct {
	tables []*Table
	byID   map[string]*Table
	owner  map[string]string // column ID -> table ID
	edges  []Edge
	edgeIx map[string]int
	tags   []string
}

// Tables returns all tables in load order. The slice is a copy; the tables
// themselves are shared and must not be modified.
func (u *Universe) Tables() []*Table {
	return slices.Clone(u.tables)
}

// Table returns the table with the given ID.
func (u *Universe) Table(id string) (*Table, bool) {
	t, ok := u.byID[id]
	return t, ok
}

// HasTable reports whether a table with the given ID exists.
func (u *Universe) HasTable(id string) bool {
	_, ok := u.byID[id]
	return ok
}

// TableIDs returns all table IDs in load order.
func (u *Universe) TableIDs() []string {
	ids := make([]string, len(u.tables))
	for i, t := range u.tables {
		ids[i] = t.ID
	}
	return ids
}

// Edges returns all edges in construction order. The slice is a copy.
func (u *Universe) Edges() []Edge {
	return slices.Clone(u.edges)
}

// Edge returns the edge with the given ID.
func (u *Universe) Edge(id string) (Edge, bool) {
	i, ok := u.edgeIx[id]
	if !ok {
		return Edge{}, false
	}
	return u.edges[i], true
}

// ColumnOwner returns the ID of the table that owns columnID.
func (u *Universe) ColumnOwner(columnID string) (string, bool) {
	id, ok := u.owner[columnID]
	return id, ok
}

// Column returns the column and its owning table.
func (u *Universe) Column(columnID string) (Column, *Table, bool) {
	tableID, ok := u.owner[columnID]
	if !ok {
		return Column{}, nil, false
	}
	t := u.byID[tableID]
	c, ok := t.Column(columnID)
	return c, t, ok
}

// Tags returns every tag used by any table, sorted.
func (u *Universe) Tags() []string {
	return slices.Clone(u.tags)
}

// TableCount returns the number of tables.
func (u *Universe) TableCount() int { return len(u.tables) }

// EdgeCount returns the number of edges.
func (u *Universe) EdgeCount() int { return len(u.edges) }

// ColumnCount returns the number of columns across all tables.
func (u *Universe) ColumnCount() int { return len(u.owner) }

// Subset returns the tables whose IDs are in ids, preserving load order.
func (u *Universe) Subset(ids IDSet) []*Table {
	out := make([]*Table, 0, len(ids))
	for _, t := range u.tables {
		if ids.Has(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// EdgesWithin returns the edges whose IDs are in ids, preserving construction order.
func (u *Universe) EdgesWithin(ids IDSet) []Edge {
	out := make([]Edge, 0, len(ids))
	for _, e := range u.edges {
		if ids.Has(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// BuildStats summarizes what [Builder.Build] kept and dropped.
type BuildStats struct {
	Tables         int
	Columns        int
	Edges          int
	DroppedEdges   int // Endpoint table or column unknown, or table self-loop
	DuplicateEdges int // Same derived ID seen more than once
}

// Builder accumulates tables and edges and freezes them into a [Universe].
//
// The zero value is not usable - use NewBuilder.
type Builder struct {
	tables []*Table
	byID   map[string]*Table
	owner  map[string]string // Column ID to table ID
	edges  []Edge
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{byID: make(map[string]*Table), owner: make(map[string]string)}
}

// AddTable copies t into the builder. Column IDs are derived with [ColumnID]
// when empty, tags are deduplicated and sorted, and an empty Kind defaults to
// [KindModel]. A column ID already owned by another table is rejected, since
// "s.t" with column "u.v" and "s.t.u" with column "v" derive the same ID.
func (b *Builder) AddTable(t Table) error {
	if t.ID == "" {
		return ErrInvalidTableID
	}
	if _, exists := b.byID[t.ID]; exists {
		return ErrDuplicateTableID
	}
	if t.Kind == "" {
		t.Kind = KindModel
	}
	if t.Label == "" {
		t.Label = t.ID
	}

	cols := make([]Column, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if c.ID == "" {
			c.ID = ColumnID(t.ID, c.Name)
		}
		if seen[c.ID] {
			return ErrDuplicateColumn
		}
		if owner, ok := b.owner[c.ID]; ok {
			return fmt.Errorf("%w: %q already belongs to table %q", ErrDuplicateColumn, c.ID, owner)
		}
		seen[c.ID] = true
		cols[i] = c
	}
	t.Columns = cols
	for _, c := range cols {
		b.owner[c.ID] = t.ID
	}

	tags := slices.Clone(t.Tags)
	slices.Sort(tags)
	t.Tags = slices.Compact(tags)

	table := &t
	b.tables = append(b.tables, table)
	b.byID[table.ID] = table
	return nil
}

// HasTable reports whether a table with the given ID was added.
func (b *Builder) HasTable(id string) bool {
	_, ok := b.byID[id]
	return ok
}

// Table returns a previously added table. The returned table is owned by the
// builder and must not be modified.
func (b *Builder) Table(id string) (*Table, bool) {
	t, ok := b.byID[id]
	return t, ok
}

// AddEdge records an edge. Validation and deduplication happen in Build so
// edges may be added before or after their tables.
func (b *Builder) AddEdge(e Edge) {
	b.edges = append(b.edges, e)
}

// Build freezes the accumulated tables and edges into a Universe. Edges whose
// endpoints do not resolve are dropped; repeated edge IDs keep the first copy.
// The builder can keep being used; later changes do not affect the result.
func (b *Builder) Build() (*Universe, BuildStats) {
	u := &Universe{
		tables: slices.Clone(b.tables),
		byID:   maps.Clone(b.byID),
		owner:  make(map[string]string),
		edgeIx: make(map[string]int, len(b.edges)),
	}
	if u.byID == nil {
		u.byID = make(map[string]*Table)
	}

	tagSet := NewIDSet()
	var stats BuildStats
	for _, t := range u.tables {
		for _, c := range t.Columns {
			u.owner[c.ID] = t.ID
		}
		tagSet.Add(t.Tags...)
	}
	u.tags = tagSet.Sorted()

	for _, e := range b.edges {
		if !u.valid(e) {
			stats.DroppedEdges++
			continue
		}
		if _, dup := u.edgeIx[e.ID]; dup {
			stats.DuplicateEdges++
			continue
		}
		u.edgeIx[e.ID] = len(u.edges)
		u.edges = append(u.edges, e)
	}

	stats.Tables = len(u.tables)
	stats.Columns = len(u.owner)
	stats.Edges = len(u.edges)
	return u, stats
}

func (u *Universe) valid(e Edge) bool {
	if e.ID == "" || !u.HasTable(e.Source) || !u.HasTable(e.Target) {
		return false
	}
	switch e.Kind {
	case EdgeKindTable:
		return e.Source != e.Target
	case EdgeKindColumn:
		return u.owner[e.SourceColumn] == e.Source && u.owner[e.TargetColumn] == e.Target
	default:
		return false
	}
}
