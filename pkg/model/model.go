package model

import (
	"slices"
	"strings"
)

// ResourceKind classifies a table by where it comes from in the pipeline.
type ResourceKind string

const (
	// KindModel is a table produced by a transformation.
	KindModel ResourceKind = "model"
	// KindSource is a raw input table. Sources always sit at depth 0.
	KindSource ResourceKind = "source"
)

// Column is a single column of a table. Columns are owned by exactly one table.
type Column struct {
	ID          string // Globally unique, see ColumnID
	Name        string
	Description string
	Type        string // Declared type string from the catalog, may be empty
}

// Table is one node of the lineage graph.
//
// Tables handed out by a Universe are shared and must not be modified.
type Table struct {
	ID          string       // Globally unique (e.g. "model.shop.orders")
	Label       string       // Display name
	Kind        ResourceKind // model or source
	Database    string
	Schema      string
	Identifier  string   // Physical relation name when it differs from Label
	Columns     []Column // Ordered as declared in the catalog
	Tags        []string // Set semantics, kept sorted by the Builder
	DocsURL     string
	Description string
}

// ColumnID derives the globally unique column identifier for a column name
// inside a table. Table IDs are unique, so the result is unique as well.
func ColumnID(tableID, name string) string {
	return tableID + "." + name
}

// HasTag reports whether the table carries tag.
func (t *Table) HasTag(tag string) bool {
	_, found := slices.BinarySearch(t.Tags, tag)
	return found
}

// HasAnyTag reports whether the table carries at least one of tags.
func (t *Table) HasAnyTag(tags IDSet) bool {
	for _, tag := range t.Tags {
		if tags.Has(tag) {
			return true
		}
	}
	return false
}

// ColumnIndex returns the position of the column in declaration order, or -1.
func (t *Table) ColumnIndex(columnID string) int {
	for i, c := range t.Columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// Column returns the column with the given ID.
func (t *Table) Column(columnID string) (Column, bool) {
	if i := t.ColumnIndex(columnID); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// ColumnByName returns the column with the given name, compared case-insensitively.
func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnIDs returns the IDs of all columns in declaration order.
func (t *Table) ColumnIDs() []string {
	ids := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		ids[i] = c.ID
	}
	return ids
}

// Relation returns the lowercased "database.schema.identifier" name used to
// match tables against SQL-level lineage reports. Label stands in for an empty
// Identifier, and empty qualifiers are skipped.
func (t *Table) Relation() string {
	name := t.Identifier
	if name == "" {
		name = t.Label
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Database, t.Schema, name} {
		if p != "" {
			parts = append(parts, strings.ToLower(p))
		}
	}
	return strings.Join(parts, ".")
}

// IsSource reports whether the table is a raw source.
func (t *Table) IsSource() bool { return t.Kind == KindSource }
