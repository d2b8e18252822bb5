package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/model"
)

// Paths lists the metadata files to load. At least Manifest or Lineage must
// be set.
type Paths struct {
	Manifest string // dbt manifest.json
	Catalog  string // dbt catalog.json, optional
	Lineage  string // Column lineage report, optional with a manifest
}

// Files returns the configured paths in a fixed order, skipping empty ones.
func (p Paths) Files() []string {
	var out []string
	for _, f := range []string{p.Manifest, p.Catalog, p.Lineage} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks that the combination of paths can be loaded.
func (p Paths) Validate() error {
	if p.Manifest == "" && p.Lineage == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a manifest or a lineage report is required")
	}
	if p.Catalog != "" && p.Manifest == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a catalog requires a manifest")
	}
	for _, f := range p.Files() {
		if err := errors.ValidatePath(f); err != nil {
			return err
		}
	}
	return nil
}

// Options tunes how metadata is converted.
type Options struct {
	// DocsBaseURL links tables into a hosted dbt docs site. Empty disables links.
	DocsBaseURL string
}

// Result is a frozen load.
type Result struct {
	Universe *model.Universe
	Stats    model.BuildStats

	// Project is the dbt project name, when a manifest was loaded.
	Project string

	// Unresolved counts lineage references to unknown relations or columns.
	Unresolved int

	// Warnings are analyzer errors carried by the lineage report.
	Warnings []string

	// Digest identifies the input contents. Equal inputs yield equal digests.
	Digest string
}

// Inputs holds raw metadata file contents. Nil fields were not configured.
type Inputs struct {
	Manifest []byte
	Catalog  []byte
	Lineage  []byte
}

// Digest identifies the contents; equal inputs yield equal digests.
func (in Inputs) Digest() string {
	return digest(in.Manifest, in.Catalog, in.Lineage)
}

// Parse builds a universe from the inputs.
func (in Inputs) Parse(opts Options) (*Result, error) {
	return Parse(in.Manifest, in.Catalog, in.Lineage, opts)
}

// Load reads the configured files concurrently and builds a universe.
// Missing files yield ErrCodeFileNotFound, malformed files
// ErrCodeInvalidMetadata.
func Load(ctx context.Context, paths Paths, opts Options) (*Result, error) {
	in, err := Read(ctx, paths)
	if err != nil {
		return nil, err
	}
	return in.Parse(opts)
}

// Read loads the configured files concurrently without parsing them.
func Read(ctx context.Context, paths Paths) (Inputs, error) {
	if err := paths.Validate(); err != nil {
		return Inputs{}, err
	}

	var in Inputs
	g, ctx := errgroup.WithContext(ctx)
	read := func(path string, dst *[]byte) {
		if path == "" {
			return
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readFile(path)
			if err != nil {
				return err
			}
			*dst = data
			return nil
		})
	}
	read(paths.Manifest, &in.Manifest)
	read(paths.Catalog, &in.Catalog)
	read(paths.Lineage, &in.Lineage)
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "metadata file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read %s", path)
	}
	return data, nil
}

// Parse builds a universe from already read file contents. Nil inputs are
// skipped; at least a manifest or a lineage report is required.
func Parse(manifest, catalog, lineage []byte, opts Options) (*Result, error) {
	if manifest == nil && lineage == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a manifest or a lineage report is required")
	}

	res := &Result{Digest: digest(manifest, catalog, lineage)}
	b := model.NewBuilder()

	var report *Report
	if lineage != nil {
		report = &Report{}
		if err := json.Unmarshal(lineage, report); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse lineage report")
		}
		res.Warnings = report.Warnings()
	}

	if manifest != nil {
		var m Manifest
		if err := json.Unmarshal(manifest, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse manifest")
		}
		var cat *Catalog
		if catalog != nil {
			cat = &Catalog{}
			if err := json.Unmarshal(catalog, cat); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse catalog")
			}
		}
		if err := addManifest(b, &m, cat, opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "manifest")
		}
		res.Project = m.Metadata.ProjectName

		if report != nil {
			u, _ := b.Build()
			res.Unresolved = addReportLineage(b, report, u.TableIDs())
		}
	} else {
		skipped, err := addStandaloneReport(b, report)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "lineage report")
		}
		res.Unresolved = skipped
	}

	res.Universe, res.Stats = b.Build()
	return res, nil
}

func digest(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		// Length prefix keeps ("ab", "") distinct from ("a", "b").
		var n [8]byte
		for i := range n {
			n[i] = byte(len(p) >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
