package source

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/lineageview/pkg/model"
)

// Manifest is the subset of a dbt manifest.json read by the loader.
type Manifest struct {
	Metadata ManifestMetadata         `json:"metadata"`
	Nodes    map[string]*ManifestNode `json:"nodes"`
	Sources  map[string]*ManifestNode `json:"sources"`
}

// ManifestMetadata identifies the dbt project.
type ManifestMetadata struct {
	ProjectName   string `json:"project_name"`
	DBTVersion    string `json:"dbt_version"`
	SchemaVersion string `json:"dbt_schema_version"`
}

// ManifestNode is a model, seed, snapshot, or source entry.
type ManifestNode struct {
	UniqueID     string                     `json:"unique_id"`
	ResourceType string                     `json:"resource_type"`
	Name         string                     `json:"name"`
	Alias        string                     `json:"alias"`
	Identifier   string                     `json:"identifier"`
	SourceName   string                     `json:"source_name"`
	Database     string                     `json:"database"`
	Schema       string                     `json:"schema"`
	Description  string                     `json:"description"`
	Tags         []string                   `json:"tags"`
	Columns      map[string]*ManifestColumn `json:"columns"`
	DependsOn    struct {
		Nodes []string `json:"nodes"`
	} `json:"depends_on"`
}

// ManifestColumn is a documented column.
type ManifestColumn struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DataType    string   `json:"data_type"`
	Tags        []string `json:"tags"`
}

// Catalog is the subset of a dbt catalog.json read by the loader.
type Catalog struct {
	Nodes   map[string]*CatalogTable `json:"nodes"`
	Sources map[string]*CatalogTable `json:"sources"`
}

// CatalogTable describes the physical columns of a relation.
type CatalogTable struct {
	UniqueID string                    `json:"unique_id"`
	Columns  map[string]*CatalogColumn `json:"columns"`
}

// CatalogColumn is a physical column.
type CatalogColumn struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Comment string `json:"comment"`
}

// Resource types turned into tables. Tests, analyses, and operations are skipped.
var tableResourceTypes = map[string]model.ResourceKind{
	"model":    model.KindModel,
	"seed":     model.KindModel,
	"snapshot": model.KindModel,
	"source":   model.KindSource,
}

func (c *Catalog) lookup(id string) *CatalogTable {
	if c == nil {
		return nil
	}
	if t, ok := c.Nodes[id]; ok {
		return t
	}
	return c.Sources[id]
}

// addManifest adds every table and table edge of a manifest, in unique ID
// order so that loads are deterministic.
func addManifest(b *model.Builder, m *Manifest, cat *Catalog, opts Options) error {
	nodes := make([]*ManifestNode, 0, len(m.Nodes)+len(m.Sources))
	for id, n := range m.Nodes {
		if n == nil {
			continue
		}
		if n.UniqueID == "" {
			n.UniqueID = id
		}
		nodes = append(nodes, n)
	}
	for id, n := range m.Sources {
		if n == nil {
			continue
		}
		if n.UniqueID == "" {
			n.UniqueID = id
		}
		if n.ResourceType == "" {
			n.ResourceType = "source"
		}
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *ManifestNode) int { return cmp.Compare(a.UniqueID, b.UniqueID) })

	for _, n := range nodes {
		kind, ok := tableResourceTypes[n.ResourceType]
		if !ok {
			continue
		}
		t := model.Table{
			ID:          n.UniqueID,
			Label:       n.Name,
			Kind:        kind,
			Database:    n.Database,
			Schema:      n.Schema,
			Identifier:  cmp.Or(n.Alias, n.Identifier),
			Columns:     mergeColumns(n.Columns, cat.lookup(n.UniqueID)),
			Tags:        n.Tags,
			Description: n.Description,
			DocsURL:     docsURL(opts.DocsBaseURL, n),
		}
		if err := b.AddTable(t); err != nil {
			return err
		}
	}

	for _, n := range nodes {
		if _, ok := tableResourceTypes[n.ResourceType]; !ok {
			continue
		}
		for _, dep := range n.DependsOn.Nodes {
			b.AddEdge(model.TableEdge(dep, n.UniqueID))
		}
	}
	return nil
}

// mergeColumns combines documented and physical columns. Physical columns come
// first in catalog order; documented columns missing from the catalog follow
// in name order. Names are matched ignoring case and the documented spelling
// wins.
func mergeColumns(documented map[string]*ManifestColumn, physical *CatalogTable) []model.Column {
	byName := make(map[string]*model.Column)
	var cols []*model.Column

	if physical != nil {
		phys := make([]*CatalogColumn, 0, len(physical.Columns))
		for name, c := range physical.Columns {
			if c == nil {
				continue
			}
			if c.Name == "" {
				c.Name = name
			}
			phys = append(phys, c)
		}
		slices.SortFunc(phys, func(a, b *CatalogColumn) int {
			return cmp.Or(cmp.Compare(a.Index, b.Index), cmp.Compare(a.Name, b.Name))
		})
		for _, c := range phys {
			key := strings.ToLower(c.Name)
			if _, dup := byName[key]; dup {
				continue
			}
			col := &model.Column{Name: c.Name, Type: c.Type, Description: c.Comment}
			byName[key] = col
			cols = append(cols, col)
		}
	}

	names := make([]string, 0, len(documented))
	for name := range documented {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		d := documented[name]
		if d == nil {
			continue
		}
		if d.Name == "" {
			d.Name = name
		}
		key := strings.ToLower(d.Name)
		if col, ok := byName[key]; ok {
			col.Name = d.Name
			col.Description = cmp.Or(d.Description, col.Description)
			col.Type = cmp.Or(col.Type, d.DataType)
			continue
		}
		col := &model.Column{Name: d.Name, Type: d.DataType, Description: d.Description}
		byName[key] = col
		cols = append(cols, col)
	}

	out := make([]model.Column, len(cols))
	for i, c := range cols {
		out[i] = *c
	}
	return out
}

// docsURL links a node into a hosted dbt docs site.
func docsURL(base string, n *ManifestNode) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/#!/" + n.ResourceType + "/" + n.UniqueID
}
