package pipeline

import (
	"context"

	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/source"
)

// LoadSource reads and parses metadata files without caching.
func LoadSource(ctx context.Context, opts Options) (*Loaded, error) {
	res, err := source.Load(ctx, opts.Paths(), opts.SourceOptions())
	if err != nil {
		return nil, err
	}
	return fromSource(res), nil
}

// LoadSnapshot reads a graph.json snapshot.
func LoadSnapshot(path string) (*Loaded, error) {
	u, meta, err := graph.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Loaded{Universe: u, Meta: meta, Stats: statsOf(u)}, nil
}

func fromSource(res *source.Result) *Loaded {
	return &Loaded{
		Universe:   res.Universe,
		Meta:       graph.Meta{Project: res.Project, Digest: res.Digest},
		Stats:      res.Stats,
		Unresolved: res.Unresolved,
		Warnings:   res.Warnings,
	}
}
