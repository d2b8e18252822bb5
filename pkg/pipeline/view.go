package pipeline

import (
	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/cache"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/model"
)

// ResolveView applies opts.Actions on top of opts.State and resolves the
// resulting view. It returns the final state alongside the view.
func ResolveView(u *model.Universe, opts Options) (explore.View, filter.State, error) {
	c := explore.New(u, opts.ExploreOptions())
	c.SetState(opts.State)
	if err := c.ApplyAll(opts.Actions...); err != nil {
		return explore.View{}, filter.State{}, err
	}
	return c.View(), c.State(), nil
}

// stateHash identifies the view inputs that are not part of the options
// key: the starting state and the actions applied on top of it.
func stateHash(opts Options) string {
	data, _ := json.Marshal(struct {
		State   filter.Snapshot  `json:"state"`
		Actions []explore.Action `json:"actions,omitempty"`
	}{opts.State.Snapshot(), opts.Actions})
	return cache.Hash(data)
}

// cachedView is the cache entry for a view: the view and its final state.
type cachedView struct {
	View  explore.View    `json:"view"`
	State filter.Snapshot `json:"state"`
}

func statsOf(u *model.Universe) model.BuildStats {
	return model.BuildStats{
		Tables:  u.TableCount(),
		Columns: u.ColumnCount(),
		Edges:   u.EdgeCount(),
	}
}
