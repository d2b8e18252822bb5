package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/lineageview/pkg/errors"
)

func TestReadProject(t *testing.T) {
	dir := filepath.Join("testdata", "project")
	p, err := ReadProject(dir)
	if err != nil {
		t.Fatalf("ReadProject() error = %v", err)
	}
	if p.Name != "shop" {
		t.Errorf("Name = %q, want shop", p.Name)
	}
	paths := p.Paths()
	if want := filepath.Join(dir, "build", "manifest.json"); paths.Manifest != want {
		t.Errorf("Manifest = %q, want %q", paths.Manifest, want)
	}
	if paths.Catalog != "" {
		t.Errorf("Catalog = %q, want empty when catalog.json is absent", paths.Catalog)
	}

	res, err := Load(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("Load(project paths) error = %v", err)
	}
	if res.Universe.TableCount() == 0 {
		t.Error("project manifest should yield tables")
	}
}

func TestReadProjectDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte("name: jaffle\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := ReadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if p.Target() != filepath.Join(dir, "target") {
		t.Errorf("Target() = %q, want the default target dir", p.Target())
	}
}

func TestReadProjectErrors(t *testing.T) {
	if _, err := ReadProject(t.TempDir()); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing project error = %v, want FILE_NOT_FOUND", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte("name: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadProject(dir); !errors.Is(err, errors.ErrCodeInvalidMetadata) {
		t.Errorf("bad yaml error = %v, want INVALID_METADATA", err)
	}
}
