package source

import (
	"slices"
	"strings"

	"github.com/matzehuels/lineageview/pkg/model"
)

// Report is a column lineage report keyed by fully qualified relation name
// ("database.schema.table", or fewer parts).
type Report struct {
	DateParsed string                     `json:"date_parsed"`
	Errors     map[string][]string        `json:"errors"`
	Lineage    map[string]*ReportRelation `json:"lineage"`
}

// ReportRelation is the lineage of one target relation.
type ReportRelation struct {
	DependsOn []string                 `json:"depends_on"`
	Columns   map[string]*ReportColumn `json:"columns"`
}

// ReportColumn lists the upstream columns ("relation.column") of one column.
type ReportColumn struct {
	Lineage []string `json:"lineage"`
}

// Warnings flattens the analyzer errors into sorted "relation: message" lines.
func (r *Report) Warnings() []string {
	var out []string
	for rel, msgs := range r.Errors {
		for _, m := range msgs {
			out = append(out, rel+": "+m)
		}
	}
	slices.Sort(out)
	return out
}

func (r *Report) targets() []string {
	rels := make([]string, 0, len(r.Lineage))
	for rel, entry := range r.Lineage {
		if entry != nil {
			rels = append(rels, rel)
		}
	}
	slices.Sort(rels)
	return rels
}

// splitColumnRef splits "db.schema.table.col" at the last dot.
func splitColumnRef(ref string) (relation, column string, ok bool) {
	i := strings.LastIndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func normalizeRelation(rel string) string {
	return strings.ToLower(strings.TrimSpace(rel))
}

// relationTable builds a table from a relation name.
func relationTable(rel string, kind model.ResourceKind) model.Table {
	parts := strings.Split(rel, ".")
	t := model.Table{
		ID:    string(kind) + "." + rel,
		Label: parts[len(parts)-1],
		Kind:  kind,
	}
	switch len(parts) {
	case 2:
		t.Schema = parts[0]
	case 3:
		t.Database, t.Schema = parts[0], parts[1]
	}
	return t
}

// addStandaloneReport adds the tables and edges of a report that is loaded
// without a manifest. Returns the number of skipped lineage references.
func addStandaloneReport(b *model.Builder, r *Report) (int, error) {
	targets := r.targets()
	isTarget := make(map[string]bool, len(targets))
	for _, rel := range targets {
		isTarget[normalizeRelation(rel)] = true
	}

	// Columns per relation, in first-seen order.
	columns := make(map[string][]string)
	seenCol := make(map[string]bool)
	addCol := func(rel, col string) {
		key := rel + "\x00" + strings.ToLower(col)
		if seenCol[key] {
			return
		}
		seenCol[key] = true
		columns[rel] = append(columns[rel], col)
	}

	var order []string
	seenRel := make(map[string]bool)
	addRel := func(rel string) {
		if !seenRel[rel] {
			seenRel[rel] = true
			order = append(order, rel)
		}
	}

	for _, rel := range targets {
		entry := r.Lineage[rel]
		target := normalizeRelation(rel)
		addRel(target)
		for _, name := range sortedKeys(entry.Columns) {
			addCol(target, name)
		}
	}
	for _, rel := range targets {
		entry := r.Lineage[rel]
		for _, dep := range entry.DependsOn {
			addRel(normalizeRelation(dep))
		}
		for _, name := range sortedKeys(entry.Columns) {
			for _, ref := range entry.Columns[name].lineage() {
				if srcRel, srcCol, ok := splitColumnRef(ref); ok {
					srcRel = normalizeRelation(srcRel)
					addRel(srcRel)
					addCol(srcRel, srcCol)
				}
			}
		}
	}

	ids := make(map[string]string, len(order))
	for _, rel := range order {
		kind := model.KindSource
		if isTarget[rel] {
			kind = model.KindModel
		}
		t := relationTable(rel, kind)
		for _, c := range columns[rel] {
			t.Columns = append(t.Columns, model.Column{Name: c})
		}
		if err := b.AddTable(t); err != nil {
			return 0, err
		}
		ids[rel] = t.ID
	}

	return addReportEdges(b, r, func(rel string) (string, bool) {
		id, ok := ids[normalizeRelation(rel)]
		return id, ok
	}), nil
}

// addReportLineage adds the column lineage of a report on top of tables that
// were already added from a manifest. Relations are matched on
// [model.Table.Relation]. Returns the number of skipped references.
func addReportLineage(b *model.Builder, r *Report, tables []string) int {
	byRelation := make(map[string]string, len(tables))
	for _, id := range tables {
		t, _ := b.Table(id)
		rel := t.Relation()
		if _, taken := byRelation[rel]; !taken {
			byRelation[rel] = id
		}
	}
	return addReportEdges(b, r, func(rel string) (string, bool) {
		id, ok := byRelation[normalizeRelation(rel)]
		return id, ok
	})
}

func addReportEdges(b *model.Builder, r *Report, resolveRel func(string) (string, bool)) int {
	skipped := 0
	column := func(tableID, name string) (string, bool) {
		t, ok := b.Table(tableID)
		if !ok {
			return "", false
		}
		c, ok := t.ColumnByName(name)
		return c.ID, ok
	}

	for _, rel := range r.targets() {
		entry := r.Lineage[rel]
		target, ok := resolveRel(rel)
		if !ok {
			skipped++
			continue
		}
		for _, dep := range entry.DependsOn {
			src, ok := resolveRel(dep)
			if !ok {
				skipped++
				continue
			}
			b.AddEdge(model.TableEdge(src, target))
		}
		for _, name := range sortedKeys(entry.Columns) {
			targetCol, ok := column(target, name)
			if !ok {
				skipped++
				continue
			}
			for _, ref := range entry.Columns[name].lineage() {
				srcRel, srcName, ok := splitColumnRef(ref)
				if !ok {
					skipped++
					continue
				}
				src, ok := resolveRel(srcRel)
				if !ok {
					skipped++
					continue
				}
				srcCol, ok := column(src, srcName)
				if !ok {
					skipped++
					continue
				}
				b.AddEdge(model.ColumnEdge(src, srcCol, target, targetCol))
			}
		}
	}
	return skipped
}

func (c *ReportColumn) lineage() []string {
	if c == nil {
		return nil
	}
	return c.Lineage
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
