package explore

import (
	"github.com/matzehuels/lineageview/pkg/errors"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionSelectTable     ActionType = "select_table"
	ActionSelectColumn    ActionType = "select_column"
	ActionClearSelection  ActionType = "clear_selection"
	ActionClearFilters    ActionType = "clear_filters"
	ActionToggleExpand    ActionType = "toggle_expand"
	ActionSetSearch       ActionType = "set_search"
	ActionSetTags         ActionType = "set_tags"
	ActionToggleTag       ActionType = "toggle_tag"
	ActionFocusColumn     ActionType = "focus_column"
	ActionReveal          ActionType = "reveal"
	ActionSetColumnFilter ActionType = "set_column_filter"
)

var actionTypes = []ActionType{
	ActionSelectTable, ActionSelectColumn, ActionClearSelection, ActionClearFilters,
	ActionToggleExpand, ActionSetSearch, ActionSetTags, ActionToggleTag,
	ActionFocusColumn, ActionReveal, ActionSetColumnFilter,
}

// ActionTypes returns every supported action type.
func ActionTypes() []ActionType {
	out := make([]ActionType, len(actionTypes))
	copy(out, actionTypes)
	return out
}

// Action is a serialized UI event. Which fields are read depends on Type:
//
//	select_table, toggle_expand, reveal   ID = table ID
//	select_column, focus_column           ID = column ID (empty ID clears the focus)
//	set_search                            Text
//	set_tags                              Tags
//	toggle_tag                            Text = tag
//	set_column_filter                     ID = table ID, Text = filter
//	clear_selection, clear_filters        no fields
type Action struct {
	Type ActionType `json:"type"`
	ID   string     `json:"id,omitempty"`
	Text string     `json:"text,omitempty"`
	Tags []string   `json:"tags,omitempty"`
}

// Validate checks that the action type is known and its fields are well-formed.
func (a Action) Validate() error {
	switch a.Type {
	case ActionSelectTable, ActionToggleExpand, ActionReveal, ActionSelectColumn:
		return errors.ValidateTableID(a.ID)
	case ActionFocusColumn:
		if a.ID == "" {
			return nil
		}
		return errors.ValidateTableID(a.ID)
	case ActionSetSearch:
		return errors.ValidateSearch(a.Text)
	case ActionSetTags:
		return errors.ValidateTags(a.Tags)
	case ActionToggleTag:
		return errors.ValidateTags([]string{a.Text})
	case ActionSetColumnFilter:
		if err := errors.ValidateTableID(a.ID); err != nil {
			return err
		}
		return errors.ValidateSearch(a.Text)
	case ActionClearSelection, ActionClearFilters:
		return nil
	case "":
		return errors.New(errors.ErrCodeInvalidAction, "action type is required")
	default:
		return errors.New(errors.ErrCodeInvalidAction, "unknown action type %q", a.Type)
	}
}
