package pipeline

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/lineageview/pkg/cache"
	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/layout"
)

func testdata(name string) string {
	return filepath.Join("..", "source", "testdata", name)
}

func dbtOptions() Options {
	return Options{
		Manifest: testdata("manifest.json"),
		Catalog:  testdata("catalog.json"),
		Lineage:  testdata("lineage_report.json"),
	}
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestOptionsValidateForLoad(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"manifest", Options{Manifest: "m.json"}, ""},
		{"lineage only", Options{Lineage: "l.json"}, ""},
		{"snapshot", Options{Snapshot: "graph.json"}, ""},
		{"nothing", Options{}, errors.ErrCodeInvalidInput},
		{"snapshot and manifest", Options{Snapshot: "g.json", Manifest: "m.json"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateForLoad() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ValidateForLoad() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSetViewDefaults(t *testing.T) {
	opts := Options{}
	opts.SetViewDefaults()

	if opts.ColumnCutoff != explore.DefaultColumnCutoff {
		t.Errorf("ColumnCutoff should be %d, got %d", explore.DefaultColumnCutoff, opts.ColumnCutoff)
	}
	if opts.HorizontalSpacing != layout.DefaultHorizontalSpacing {
		t.Errorf("HorizontalSpacing should be %f, got %f", layout.DefaultHorizontalSpacing, opts.HorizontalSpacing)
	}
	if opts.VerticalSpacing != layout.DefaultVerticalSpacing {
		t.Errorf("VerticalSpacing should be %f, got %f", layout.DefaultVerticalSpacing, opts.VerticalSpacing)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats should be [%s], got %v", DefaultFormat, opts.Formats)
	}
}

func TestValidateForRender(t *testing.T) {
	opts := Options{Formats: []string{"svg", "pdf"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateForRender() error = %v, want INVALID_FORMAT", err)
	}
}

func TestValidateForViewRejectsBadAction(t *testing.T) {
	opts := Options{Actions: []explore.Action{{Type: "teleport"}}}
	if err := opts.ValidateForView(); err == nil {
		t.Error("ValidateForView() should reject unknown action types")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := dbtOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	cutoff, formats := opts.ColumnCutoff, opts.Formats

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.ColumnCutoff != cutoff || !reflect.DeepEqual(opts.Formats, formats) {
		t.Error("defaults changed on second call")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	defer r.Close()

	opts := dbtOptions()
	opts.State = filter.State{}.WithSearch("orders")
	opts.Formats = []string{"json", "dot", "svg"}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run CacheInfo = %+v, want all misses", first.CacheInfo)
	}
	if first.Stats.Tables != 3 {
		t.Errorf("Stats.Tables = %d, want 3", first.Stats.Tables)
	}
	if first.View.Branch != "search" {
		t.Errorf("View.Branch = %q, want search", first.View.Branch)
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() second run error = %v", err)
	}
	want := CacheInfo{LoadHit: true, ViewHit: true, RenderHit: true}
	if second.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", second.CacheInfo, want)
	}
	if len(second.View.Nodes) != len(first.View.Nodes) || len(second.View.Edges) != len(first.View.Edges) {
		t.Error("cached view differs from computed view")
	}
	if string(second.Artifacts["dot"]) != string(first.Artifacts["dot"]) {
		t.Error("cached DOT differs from rendered DOT")
	}
}

func TestExecuteStateChangesViewKey(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	opts := dbtOptions()
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.State = filter.State{}.WithSearch("stg")
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.LoadHit {
		t.Error("same metadata should hit the snapshot cache")
	}
	if res.CacheInfo.ViewHit {
		t.Error("a different state should miss the view cache")
	}
}

func TestExecuteActions(t *testing.T) {
	opts := dbtOptions()
	opts.Actions = []explore.Action{
		{Type: explore.ActionSelectTable, ID: "model.shop.orders"},
	}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.State.SelectedTable != "model.shop.orders" {
		t.Errorf("State.SelectedTable = %q", res.State.SelectedTable)
	}
	n, ok := res.View.Node("model.shop.orders")
	if !ok || !n.Selected {
		t.Errorf("selected node = %+v, %v", n, ok)
	}
}

func TestExecuteUnknownActionTarget(t *testing.T) {
	opts := dbtOptions()
	opts.Actions = []explore.Action{{Type: explore.ActionSelectTable, ID: "model.shop.nope"}}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeTableNotFound) {
		t.Errorf("Execute() error = %v, want TABLE_NOT_FOUND", err)
	}
}

func TestExecuteSnapshot(t *testing.T) {
	ctx := context.Background()
	loaded, err := LoadSource(ctx, dbtOptions())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graph.WriteFile(loaded.Universe, loaded.Meta, path); err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Snapshot: path})
	if err != nil {
		t.Fatalf("Execute(snapshot) error = %v", err)
	}
	if res.Loaded.Meta.Digest != loaded.Meta.Digest {
		t.Errorf("snapshot digest = %q, want %q", res.Loaded.Meta.Digest, loaded.Meta.Digest)
	}
	if res.Stats.Edges != loaded.Universe.EdgeCount() {
		t.Errorf("snapshot edges = %d, want %d", res.Stats.Edges, loaded.Universe.EdgeCount())
	}
}

func TestExecuteMissingFile(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Manifest: testdata("nope.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRefreshBypassesSnapshotCache(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	opts := dbtOptions()
	if _, err := r.Load(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	_, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("Refresh should bypass the snapshot cache")
	}
}
