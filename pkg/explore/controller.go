package explore

import (
	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/layout"
	"github.com/matzehuels/lineageview/pkg/model"
	"github.com/matzehuels/lineageview/pkg/resolve"
)

// DefaultColumnCutoff is the number of columns a collapsed table shows.
const DefaultColumnCutoff = 10

// Options configures a Controller.
type Options struct {
	// ColumnCutoff is the number of columns a collapsed table shows.
	// Zero uses DefaultColumnCutoff.
	ColumnCutoff int

	// Layout tunes the grid spacing of views.
	Layout layout.Options
}

func (o Options) withDefaults() Options {
	if o.ColumnCutoff <= 0 {
		o.ColumnCutoff = DefaultColumnCutoff
	}
	return o
}

// Controller owns the filter state of one view over a universe.
type Controller struct {
	u     *model.Universe
	edges []model.Edge
	st    filter.State
	opts  Options
}

// New creates a controller with the zero state.
func New(u *model.Universe, opts Options) *Controller {
	if u == nil {
		u = &model.Universe{}
	}
	return &Controller{u: u, edges: u.Edges(), opts: opts.withDefaults()}
}

// Universe returns the graph snapshot the controller views.
func (c *Controller) Universe() *model.Universe { return c.u }

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// State returns the current filter state.
func (c *Controller) State() filter.State { return c.st.Clone() }

// SetState replaces the current state, for example with one decoded from a
// query string or loaded from a session store.
func (c *Controller) SetState(st filter.State) { c.st = st.Clone() }

// SetUniverse swaps in a reloaded snapshot. The filter state is kept;
// identifiers that no longer exist are ignored by the resolvers.
func (c *Controller) SetUniverse(u *model.Universe) {
	c.u = u
	c.edges = u.Edges()
}

// SelectTable selects a table: all of its columns become selected, its table
// edges are highlighted, and it and its neighbors are expanded. Selecting the
// already selected table clears the selection.
func (c *Controller) SelectTable(id string) error {
	t, ok := c.u.Table(id)
	if !ok {
		return errors.New(errors.ErrCodeTableNotFound, "table %q not found", id)
	}
	if c.st.SelectedTable == id {
		c.st = c.st.WithoutSelection()
		return nil
	}
	c.st = c.st.
		WithSelection(id, model.NewIDSet(t.ColumnIDs()...)).
		WithExpanded(resolve.NeighborsOfTable(id, c.edges))
	return nil
}

// SelectColumn selects exactly one column and highlights its lineage edges.
// Neighbor tables whose connecting column sits past the column cutoff are
// expanded so the highlighted edges stay attached. Selecting the only
// selected column again clears the selection.
func (c *Controller) SelectColumn(id string) error {
	if _, ok := c.u.ColumnOwner(id); !ok {
		return errors.New(errors.ErrCodeColumnNotFound, "column %q not found", id)
	}
	if c.st.SelectedTable == "" && c.st.SelectedColumns.Len() == 1 && c.st.SelectedColumns.Has(id) {
		c.st = c.st.WithoutSelection()
		return nil
	}

	expand := model.NewIDSet()
	for tableID, cols := range resolve.ConnectingColumns(id, c.edges) {
		t, ok := c.u.Table(tableID)
		if !ok {
			continue
		}
		for _, colID := range cols {
			if t.ColumnIndex(colID) >= c.opts.ColumnCutoff {
				expand.Add(tableID)
				break
			}
		}
	}
	c.st = c.st.WithSelection("", model.NewIDSet(id)).WithExpanded(expand)
	return nil
}

// ClearSelection clears the selected table, selected columns, and focused
// column. Search, tags, and revealed tables are kept.
func (c *Controller) ClearSelection() {
	c.st = c.st.WithoutSelection()
}

// ClearFilters resets every filter and the selection.
func (c *Controller) ClearFilters() {
	c.st = c.st.WithoutFilters()
}

// ToggleExpand collapses an expanded table, or expands a collapsed table
// together with its neighbors.
func (c *Controller) ToggleExpand(id string) error {
	if !c.u.HasTable(id) {
		return errors.New(errors.ErrCodeTableNotFound, "table %q not found", id)
	}
	if c.st.IsExpanded(id) {
		c.st = c.st.WithCollapsed(id)
		return nil
	}
	c.st = c.st.WithExpanded(resolve.NeighborsOfTable(id, c.edges))
	return nil
}

// SetSearch replaces the search text.
func (c *Controller) SetSearch(text string) error {
	if err := errors.ValidateSearch(text); err != nil {
		return err
	}
	c.st = c.st.WithSearch(text)
	return nil
}

// SetTags replaces the tag selection.
func (c *Controller) SetTags(tags ...string) error {
	if err := errors.ValidateTags(tags); err != nil {
		return err
	}
	c.st = c.st.WithTags(tags...)
	return nil
}

// ToggleTag adds a tag to the selection, or removes it if already selected.
func (c *Controller) ToggleTag(tag string) error {
	if err := errors.ValidateTags([]string{tag}); err != nil {
		return err
	}
	c.st = c.st.WithTagToggled(tag)
	return nil
}

// FocusColumn isolates the lineage of a column. Focusing the focused column
// again, or passing an empty id, removes the focus.
func (c *Controller) FocusColumn(id string) error {
	if id == "" || c.st.FocusedColumn == id {
		c.st = c.st.WithFocusedColumn("")
		return nil
	}
	if _, ok := c.u.ColumnOwner(id); !ok {
		return errors.New(errors.ErrCodeColumnNotFound, "column %q not found", id)
	}
	c.st = c.st.WithFocusedColumn(id)
	return nil
}

// Reveal adds a table and its neighbors to the revealed set so they stay
// visible under a search or tag filter.
func (c *Controller) Reveal(id string) error {
	if !c.u.HasTable(id) {
		return errors.New(errors.ErrCodeTableNotFound, "table %q not found", id)
	}
	c.st = c.st.WithRevealed(resolve.NeighborsOfTable(id, c.edges))
	return nil
}

// SetColumnFilter sets the local column text filter of a table. Blank text
// removes it.
func (c *Controller) SetColumnFilter(tableID, text string) error {
	if !c.u.HasTable(tableID) {
		return errors.New(errors.ErrCodeTableNotFound, "table %q not found", tableID)
	}
	if err := errors.ValidateSearch(text); err != nil {
		return err
	}
	c.st = c.st.WithColumnFilter(tableID, text)
	return nil
}

// Apply dispatches a serialized action. On error the state is unchanged.
func (c *Controller) Apply(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	switch a.Type {
	case ActionSelectTable:
		return c.SelectTable(a.ID)
	case ActionSelectColumn:
		return c.SelectColumn(a.ID)
	case ActionClearSelection:
		c.ClearSelection()
	case ActionClearFilters:
		c.ClearFilters()
	case ActionToggleExpand:
		return c.ToggleExpand(a.ID)
	case ActionSetSearch:
		return c.SetSearch(a.Text)
	case ActionSetTags:
		return c.SetTags(a.Tags...)
	case ActionToggleTag:
		return c.ToggleTag(a.Text)
	case ActionFocusColumn:
		return c.FocusColumn(a.ID)
	case ActionReveal:
		return c.Reveal(a.ID)
	case ActionSetColumnFilter:
		return c.SetColumnFilter(a.ID, a.Text)
	}
	return nil
}

// ApplyAll dispatches actions in order and stops at the first error.
func (c *Controller) ApplyAll(actions ...Action) error {
	for _, a := range actions {
		if err := c.Apply(a); err != nil {
			return err
		}
	}
	return nil
}
