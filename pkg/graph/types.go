package graph

import (
	"github.com/matzehuels/lineageview/pkg/model"
)

// FormatVersion is the current snapshot format version.
const FormatVersion = 1

// Graph is the serialized form of a universe.
type Graph struct {
	Version int     `json:"version" bson:"version"`
	Project string  `json:"project,omitempty" bson:"project,omitempty"`
	Digest  string  `json:"digest,omitempty" bson:"digest,omitempty"`
	Tables  []Table `json:"tables" bson:"tables"`
	Edges   []Edge  `json:"edges" bson:"edges"`
}

// Meta describes where a snapshot came from.
type Meta struct {
	Project string // dbt project name, if any
	Digest  string // Digest of the metadata files the universe was built from
}

// Table is a serialized table.
type Table struct {
	ID          string   `json:"id" bson:"id"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Kind        string   `json:"kind,omitempty" bson:"kind,omitempty"`
	Database    string   `json:"database,omitempty" bson:"database,omitempty"`
	Schema      string   `json:"schema,omitempty" bson:"schema,omitempty"`
	Identifier  string   `json:"identifier,omitempty" bson:"identifier,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	DocsURL     string   `json:"docs_url,omitempty" bson:"docs_url,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Columns     []Column `json:"columns,omitempty" bson:"columns,omitempty"`
}

// Column is a serialized column.
type Column struct {
	Name        string `json:"name" bson:"name"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Edge is a serialized edge. Column fields are set for column edges only.
type Edge struct {
	Kind         string `json:"kind" bson:"kind"`
	Source       string `json:"source" bson:"source"`
	Target       string `json:"target" bson:"target"`
	SourceColumn string `json:"source_column,omitempty" bson:"source_column,omitempty"`
	TargetColumn string `json:"target_column,omitempty" bson:"target_column,omitempty"`
}

// FromUniverse converts a universe to its serialized form.
func FromUniverse(u *model.Universe, meta Meta) Graph {
	g := Graph{
		Version: FormatVersion,
		Project: meta.Project,
		Digest:  meta.Digest,
		Tables:  make([]Table, 0, u.TableCount()),
		Edges:   make([]Edge, 0, u.EdgeCount()),
	}
	for _, t := range u.Tables() {
		g.Tables = append(g.Tables, FromTable(t))
	}
	for _, e := range u.Edges() {
		g.Edges = append(g.Edges, Edge{
			Kind:         string(e.Kind),
			Source:       e.Source,
			Target:       e.Target,
			SourceColumn: e.SourceColumn,
			TargetColumn: e.TargetColumn,
		})
	}
	return g
}

// FromTable converts one table to its serialized form.
func FromTable(t *model.Table) Table {
	st := Table{
		ID:          t.ID,
		Label:       t.Label,
		Kind:        string(t.Kind),
		Database:    t.Database,
		Schema:      t.Schema,
		Identifier:  t.Identifier,
		Description: t.Description,
		DocsURL:     t.DocsURL,
		Tags:        t.Tags,
	}
	for _, c := range t.Columns {
		st.Columns = append(st.Columns, Column{Name: c.Name, Type: c.Type, Description: c.Description})
	}
	return st
}

// ToUniverse rebuilds a universe. Edges that no longer resolve are dropped
// and counted like in any other build.
func ToUniverse(g Graph) (*model.Universe, model.BuildStats, error) {
	if g.Version > FormatVersion {
		return nil, model.BuildStats{}, errUnsupportedVersion(g.Version)
	}
	b := model.NewBuilder()
	for _, st := range g.Tables {
		t := model.Table{
			ID:          st.ID,
			Label:       st.Label,
			Kind:        model.ResourceKind(st.Kind),
			Database:    st.Database,
			Schema:      st.Schema,
			Identifier:  st.Identifier,
			Description: st.Description,
			DocsURL:     st.DocsURL,
			Tags:        st.Tags,
		}
		for _, c := range st.Columns {
			t.Columns = append(t.Columns, model.Column{Name: c.Name, Type: c.Type, Description: c.Description})
		}
		if err := b.AddTable(t); err != nil {
			return nil, model.BuildStats{}, errInvalidTable(st.ID, err)
		}
	}
	for _, e := range g.Edges {
		switch model.EdgeKind(e.Kind) {
		case model.EdgeKindColumn:
			b.AddEdge(model.ColumnEdge(e.Source, e.SourceColumn, e.Target, e.TargetColumn))
		default:
			b.AddEdge(model.TableEdge(e.Source, e.Target))
		}
	}
	u, stats := b.Build()
	return u, stats, nil
}
