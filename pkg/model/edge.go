package model

// EdgeKind distinguishes coarse table dependencies from column lineage.
type EdgeKind string

const (
	// EdgeKindTable is a dependency between two tables.
	EdgeKindTable EdgeKind = "table"
	// EdgeKindColumn is lineage between a column in each of two tables.
	EdgeKindColumn EdgeKind = "column"
)

// Reserved handle names used by table edges in place of column IDs.
const (
	HandleTableOut = "__table_out__"
	HandleTableIn  = "__table_in__"
)

// Edge is a directed relation from Source to Target (Target depends on Source).
type Edge struct {
	ID           string
	Kind         EdgeKind
	Source       string // Source table ID
	Target       string // Target table ID
	SourceColumn string // Source column ID, empty for table edges
	TargetColumn string // Target column ID, empty for table edges
}

// TableEdge constructs a table-level dependency edge with a derived ID.
func TableEdge(source, target string) Edge {
	return Edge{
		ID:     "table:" + source + "->" + target,
		Kind:   EdgeKindTable,
		Source: source,
		Target: target,
	}
}

// ColumnEdge constructs a column lineage edge with a derived ID. The ID only
// depends on the column pair, so several lineage paths producing the same
// pair collapse to one edge.
func ColumnEdge(sourceTable, sourceColumn, targetTable, targetColumn string) Edge {
	return Edge{
		ID:           "column:" + sourceColumn + "->" + targetColumn,
		Kind:         EdgeKindColumn,
		Source:       sourceTable,
		Target:       targetTable,
		SourceColumn: sourceColumn,
		TargetColumn: targetColumn,
	}
}

// IsColumn reports whether e is a column lineage edge.
func (e Edge) IsColumn() bool { return e.Kind == EdgeKindColumn }

// IsTable reports whether e is a table dependency edge.
func (e Edge) IsTable() bool { return e.Kind == EdgeKindTable }

// Handles returns the connection points used by renderers: the column IDs for
// column edges, the reserved table handles otherwise.
func (e Edge) Handles() (source, target string) {
	if e.IsColumn() {
		return e.SourceColumn, e.TargetColumn
	}
	return HandleTableOut, HandleTableIn
}

// TouchesTable reports whether either endpoint is the given table.
func (e Edge) TouchesTable(id string) bool {
	return e.Source == id || e.Target == id
}

// TouchesColumn reports whether either endpoint column is the given column.
// Always false for table edges.
func (e Edge) TouchesColumn(id string) bool {
	return e.IsColumn() && (e.SourceColumn == id || e.TargetColumn == id)
}

// Other returns the table at the opposite end from id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}
