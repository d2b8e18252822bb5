package source

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineageview/pkg/errors"
)

// ProjectFile is the dbt project definition at the root of a project.
const ProjectFile = "dbt_project.yml"

// Project is the subset of dbt_project.yml needed to find the artifacts.
type Project struct {
	Name       string `yaml:"name"`
	TargetPath string `yaml:"target-path"`

	dir string
}

// ReadProject parses dir/dbt_project.yml. An unset target-path means
// "target", as in dbt.
func ReadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFile)
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse %s", path)
	}
	if p.TargetPath == "" {
		p.TargetPath = "target"
	}
	p.dir = dir
	return &p, nil
}

// Target returns the artifact directory.
func (p *Project) Target() string {
	if filepath.IsAbs(p.TargetPath) {
		return p.TargetPath
	}
	return filepath.Join(p.dir, p.TargetPath)
}

// Paths returns the manifest and catalog locations. The catalog is left
// empty when dbt has not generated it yet.
func (p *Project) Paths() Paths {
	target := p.Target()
	paths := Paths{Manifest: filepath.Join(target, "manifest.json")}
	if catalog := filepath.Join(target, "catalog.json"); fileExists(catalog) {
		paths.Catalog = catalog
	}
	return paths
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
