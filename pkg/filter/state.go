package filter

import (
	"maps"
	"strings"

	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/model"
)

// State is the composite filter and selection state.
//
// Treat a State as immutable: use the With methods to derive new states.
type State struct {
	Search          string            // Free-text query
	Tags            model.IDSet       // Selected tags
	FocusedColumn   string            // Column ID whose lineage is isolated
	Revealed        model.IDSet       // Table IDs revealed manually
	SelectedTable   string            // Table whose table edges are highlighted
	SelectedColumns model.IDSet       // Column IDs whose column edges are highlighted
	Expanded        model.IDSet       // Table IDs showing all columns
	ColumnFilters   map[string]string // Table ID -> local column text filter
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Tags = cloneSet(s.Tags)
	s.Revealed = cloneSet(s.Revealed)
	s.SelectedColumns = cloneSet(s.SelectedColumns)
	s.Expanded = cloneSet(s.Expanded)
	if s.ColumnFilters != nil {
		s.ColumnFilters = maps.Clone(s.ColumnFilters)
	}
	return s
}

func cloneSet(s model.IDSet) model.IDSet {
	if s == nil {
		return nil
	}
	return s.Clone()
}

// Query returns the trimmed search text.
func (s State) Query() string {
	return strings.TrimSpace(s.Search)
}

// HasSearch reports whether a non-blank search is active.
func (s State) HasSearch() bool { return s.Query() != "" }

// HasTags reports whether at least one tag is selected.
func (s State) HasTags() bool { return s.Tags.Len() > 0 }

// HasFocus reports whether a column is focused.
func (s State) HasFocus() bool { return s.FocusedColumn != "" }

// HasFilter reports whether any seed filter (focus, search, or tags) is active.
func (s State) HasFilter() bool {
	return s.HasFocus() || s.HasSearch() || s.HasTags()
}

// HasSelection reports whether anything is selected for highlighting.
func (s State) HasSelection() bool {
	return s.SelectedTable != "" || s.SelectedColumns.Len() > 0
}

// IsZero reports whether s is equivalent to the zero State.
func (s State) IsZero() bool {
	return s.Search == "" && s.Tags.Len() == 0 && s.FocusedColumn == "" &&
		s.Revealed.Len() == 0 && s.SelectedTable == "" && s.SelectedColumns.Len() == 0 &&
		s.Expanded.Len() == 0 && len(s.ColumnFilters) == 0
}

// IsExpanded reports whether the table shows all of its columns.
func (s State) IsExpanded(tableID string) bool { return s.Expanded.Has(tableID) }

// ColumnFilter returns the local column filter of a table.
func (s State) ColumnFilter(tableID string) string { return s.ColumnFilters[tableID] }

// WithSearch returns a copy with the search text replaced.
func (s State) WithSearch(text string) State {
	out := s.Clone()
	out.Search = text
	return out
}

// WithTags returns a copy with the tag selection replaced.
func (s State) WithTags(tags ...string) State {
	out := s.Clone()
	out.Tags = nil
	if len(tags) > 0 {
		out.Tags = model.NewIDSet(tags...)
	}
	return out
}

// WithTagToggled returns a copy with tag added, or removed if already selected.
func (s State) WithTagToggled(tag string) State {
	out := s.Clone()
	if out.Tags.Has(tag) {
		delete(out.Tags, tag)
		if out.Tags.Len() == 0 {
			out.Tags = nil
		}
		return out
	}
	if out.Tags == nil {
		out.Tags = model.NewIDSet()
	}
	out.Tags.Add(tag)
	return out
}

// WithFocusedColumn returns a copy with the focused column replaced. An empty
// id removes the focus.
func (s State) WithFocusedColumn(columnID string) State {
	out := s.Clone()
	out.FocusedColumn = columnID
	return out
}

// WithRevealed returns a copy with ids added to the revealed set.
func (s State) WithRevealed(ids model.IDSet) State {
	out := s.Clone()
	out.Revealed = union(out.Revealed, ids)
	return out
}

// WithSelection returns a copy whose selection is exactly table and columns.
func (s State) WithSelection(tableID string, columns model.IDSet) State {
	out := s.Clone()
	out.SelectedTable = tableID
	out.SelectedColumns = cloneSet(columns)
	if out.SelectedColumns.Len() == 0 {
		out.SelectedColumns = nil
	}
	return out
}

// WithoutSelection returns a copy with the selected table, selected columns,
// and focused column cleared. Search, tags, and revealed tables are kept.
func (s State) WithoutSelection() State {
	out := s.Clone()
	out.SelectedTable = ""
	out.SelectedColumns = nil
	out.FocusedColumn = ""
	return out
}

// WithExpanded returns a copy with ids added to the expanded set.
func (s State) WithExpanded(ids model.IDSet) State {
	out := s.Clone()
	out.Expanded = union(out.Expanded, ids)
	return out
}

// WithCollapsed returns a copy with id removed from the expanded set.
func (s State) WithCollapsed(id string) State {
	out := s.Clone()
	delete(out.Expanded, id)
	if out.Expanded.Len() == 0 {
		out.Expanded = nil
	}
	return out
}

// WithColumnFilter returns a copy with the local column filter of a table
// replaced. Blank text removes the filter.
func (s State) WithColumnFilter(tableID, text string) State {
	out := s.Clone()
	if strings.TrimSpace(text) == "" {
		delete(out.ColumnFilters, tableID)
		if len(out.ColumnFilters) == 0 {
			out.ColumnFilters = nil
		}
		return out
	}
	if out.ColumnFilters == nil {
		out.ColumnFilters = make(map[string]string)
	}
	out.ColumnFilters[tableID] = text
	return out
}

// WithoutFilters returns the state after a "clear filters" action: search,
// tags, revealed, expanded, focus, and local column filters are reset, and
// the selection is cleared as well.
func (s State) WithoutFilters() State {
	return State{}
}

// Equal reports whether two states hold the same values.
func (s State) Equal(o State) bool {
	return s.Search == o.Search &&
		s.FocusedColumn == o.FocusedColumn &&
		s.SelectedTable == o.SelectedTable &&
		setEqual(s.Tags, o.Tags) &&
		setEqual(s.Revealed, o.Revealed) &&
		setEqual(s.SelectedColumns, o.SelectedColumns) &&
		setEqual(s.Expanded, o.Expanded) &&
		maps.Equal(s.ColumnFilters, o.ColumnFilters)
}

func setEqual(a, b model.IDSet) bool {
	if a.Len() == 0 && b.Len() == 0 {
		return true
	}
	return a.Equal(b)
}

func union(a, b model.IDSet) model.IDSet {
	if a.Len() == 0 && b.Len() == 0 {
		return a
	}
	out := cloneSet(a)
	if out == nil {
		out = model.NewIDSet()
	}
	out.AddAll(b)
	return out
}

// Snapshot is the serializable form of a State, used by session stores.
// Sets are stored as sorted slices.
type Snapshot struct {
	Search          string            `json:"search,omitempty" bson:"search,omitempty"`
	Tags            []string          `json:"tags,omitempty" bson:"tags,omitempty"`
	FocusedColumn   string            `json:"focused_column,omitempty" bson:"focused_column,omitempty"`
	Revealed        []string          `json:"revealed,omitempty" bson:"revealed,omitempty"`
	SelectedTable   string            `json:"selected_table,omitempty" bson:"selected_table,omitempty"`
	SelectedColumns []string          `json:"selected_columns,omitempty" bson:"selected_columns,omitempty"`
	Expanded        []string          `json:"expanded,omitempty" bson:"expanded,omitempty"`
	ColumnFilters   map[string]string `json:"column_filters,omitempty" bson:"column_filters,omitempty"`
}

// Snapshot converts s to its serializable form.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Search:          s.Search,
		Tags:            sorted(s.Tags),
		FocusedColumn:   s.FocusedColumn,
		Revealed:        sorted(s.Revealed),
		SelectedTable:   s.SelectedTable,
		SelectedColumns: sorted(s.SelectedColumns),
		Expanded:        sorted(s.Expanded),
		ColumnFilters:   maps.Clone(s.ColumnFilters),
	}
}

func sorted(s model.IDSet) []string {
	if s.Len() == 0 {
		return nil
	}
	return s.Sorted()
}

// State converts a snapshot back into a State.
func (snap Snapshot) State() State {
	return State{
		Search:          snap.Search,
		Tags:            toSet(snap.Tags),
		FocusedColumn:   snap.FocusedColumn,
		Revealed:        toSet(snap.Revealed),
		SelectedTable:   snap.SelectedTable,
		SelectedColumns: toSet(snap.SelectedColumns),
		Expanded:        toSet(snap.Expanded),
		ColumnFilters:   maps.Clone(snap.ColumnFilters),
	}
}

func toSet(ids []string) model.IDSet {
	if len(ids) == 0 {
		return nil
	}
	return model.NewIDSet(ids...)
}

// MarshalJSON encodes the state through its Snapshot.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON decodes a Snapshot into s.
func (s *State) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	*s = snap.State()
	return nil
}
