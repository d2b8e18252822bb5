package resolve

import (
	"slices"
	"strings"

	"github.com/matzehuels/lineageview/pkg/model"
)

// DefaultSuggestLimit caps the number of suggestions when no limit is given.
const DefaultSuggestLimit = 20

// SuggestionKind distinguishes table and column suggestions.
type SuggestionKind string

const (
	SuggestTable  SuggestionKind = "table"
	SuggestColumn SuggestionKind = "column"
)

// Suggestion is a search completion. Table suggestions set TableID and
// TableLabel; column suggestions additionally set ColumnID and ColumnLabel.
type Suggestion struct {
	Kind        SuggestionKind `json:"kind"`
	TableID     string         `json:"table_id"`
	TableLabel  string         `json:"table_label"`
	ColumnID    string         `json:"column_id,omitempty"`
	ColumnLabel string         `json:"column_label,omitempty"`
}

// Text returns what a search box should be filled with when the suggestion
// is picked.
func (s Suggestion) Text() string {
	if s.Kind == SuggestColumn {
		return s.ColumnLabel
	}
	return s.TableLabel
}

type ranked struct {
	s    Suggestion
	rank int
}

// Suggest returns tables whose label and columns whose name contain query,
// ignoring case. Exact matches rank before prefix matches, which rank before
// other matches; table suggestions come before column suggestions of the same
// rank. Ties keep universe order. A blank query yields nothing.
func Suggest(u *model.Universe, query string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	var hits []ranked
	for _, t := range u.Tables() {
		if r, ok := rank(t.Label, q); ok {
			hits = append(hits, ranked{rank: 2 * r, s: Suggestion{
				Kind:       SuggestTable,
				TableID:    t.ID,
				TableLabel: t.Label,
			}})
		}
	}
	for _, t := range u.Tables() {
		for _, c := range t.Columns {
			if r, ok := rank(c.Name, q); ok {
				hits = append(hits, ranked{rank: 2*r + 1, s: Suggestion{
					Kind:        SuggestColumn,
					TableID:     t.ID,
					TableLabel:  t.Label,
					ColumnID:    c.ID,
					ColumnLabel: c.Name,
				}})
			}
		}
	}

	slices.SortStableFunc(hits, func(a, b ranked) int { return a.rank - b.rank })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Suggestion, len(hits))
	for i, h := range hits {
		out[i] = h.s
	}
	return out
}

func rank(name, q string) (int, bool) {
	n := strings.ToLower(name)
	switch {
	case n == q:
		return 0, true
	case strings.HasPrefix(n, q):
		return 1, true
	case strings.Contains(n, q):
		return 2, true
	default:
		return 0, false
	}
}
