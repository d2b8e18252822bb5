package filter

import (
	"net/url"
	"strings"

	"github.com/matzehuels/lineageview/pkg/errors"
)

// Query parameter names.
const (
	ParamColumn = "column"
	ParamSearch = "search"
	ParamTags   = "tags"
)

// Encode projects the URL-visible part of s to a query string without the
// leading "?". At most one parameter is written, by priority: focused column,
// then search, then tags. Tags are comma separated and sorted. The empty
// string means no parameter.
func Encode(s State) string {
	v := url.Values{}
	switch {
	case s.HasFocus():
		v.Set(ParamColumn, s.FocusedColumn)
	case s.HasSearch():
		v.Set(ParamSearch, s.Search)
	case s.HasTags():
		v.Set(ParamTags, strings.Join(s.Tags.Sorted(), ","))
	default:
		return ""
	}
	return v.Encode()
}

// Decode seeds a fresh State from a query string. A leading "?" is allowed.
// Only the highest priority parameter present is applied; unknown parameters
// are ignored.
func Decode(query string) (State, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return State{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed query string")
	}
	return FromValues(v)
}

// FromValues seeds a fresh State from parsed query parameters.
func FromValues(v url.Values) (State, error) {
	if column := strings.TrimSpace(v.Get(ParamColumn)); column != "" {
		if err := errors.ValidateTableID(column); err != nil {
			return State{}, err
		}
		return State{FocusedColumn: column}, nil
	}

	if search := v.Get(ParamSearch); strings.TrimSpace(search) != "" {
		if err := errors.ValidateSearch(search); err != nil {
			return State{}, err
		}
		return State{Search: search}, nil
	}

	if raw := v.Get(ParamTags); raw != "" {
		tags := SplitTags(raw)
		if err := errors.ValidateTags(tags); err != nil {
			return State{}, err
		}
		return State{}.WithTags(tags...), nil
	}

	return State{}, nil
}

// SplitTags splits a comma separated tag list, dropping blanks.
func SplitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Sync decides when a state change should be written back to the URL.
//
// The first projection (from [Sync.Load] or the first [Sync.Update]) is only
// recorded. Later updates report the new query string when the projection
// changed.
type Sync struct {
	loaded bool
	last   string
}

// Load decodes the initial query string and records its projection.
func (s *Sync) Load(query string) (State, error) {
	st, err := Decode(query)
	if err != nil {
		return State{}, err
	}
	s.loaded = true
	s.last = Encode(st)
	return st, nil
}

// Update returns the query string to write back for st, and whether it
// should be written at all.
func (s *Sync) Update(st State) (string, bool) {
	q := Encode(st)
	if !s.loaded {
		s.loaded = true
		s.last = q
		return "", false
	}
	if q == s.last {
		return "", false
	}
	s.last = q
	return q, true
}

// Current returns the last recorded projection.
func (s *Sync) Current() string { return s.last }
