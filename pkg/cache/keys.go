package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
)

// Keyer derives cache keys for the lineage pipeline stages.
type Keyer interface {
	// SnapshotKey identifies a parsed universe by its metadata digest.
	SnapshotKey(digest string) string

	// ViewKey identifies a rendered view of a snapshot under a filter state.
	ViewKey(digest string, opts ViewKeyOpts) string

	// ArtifactKey identifies a rendered output file for a view.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// ViewKeyOpts holds the inputs that change a view for a fixed snapshot.
type ViewKeyOpts struct {
	State             string  `json:"state"`
	ColumnCutoff      int     `json:"column_cutoff"`
	HorizontalSpacing float64 `json:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing"`
}

// ArtifactKeyOpts holds the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces "<kind>:<hash>" keys, each prefixed with Namespace.
// A namespace lets several projects share one Redis database.
type DefaultKeyer struct {
	Namespace string
}

// NewDefaultKeyer returns the unscoped key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// NewScopedKeyer returns the default scheme with every key prefixed by
// namespace and a colon.
func NewScopedKeyer(namespace string) Keyer {
	if namespace == "" {
		return DefaultKeyer{}
	}
	return DefaultKeyer{Namespace: namespace + ":"}
}

func (k DefaultKeyer) SnapshotKey(digest string) string {
	return k.Namespace + "snapshot:" + digest
}

func (k DefaultKeyer) ViewKey(digest string, opts ViewKeyOpts) string {
	return k.hashed("view", digest, opts)
}

func (k DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.hashed("artifact", viewHash, opts)
}

// hashed hashes the JSON encoding of parts. Every part is a string or a
// plain struct, so encoding cannot fail.
func (k DefaultKeyer) hashed(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return k.Namespace + kind + ":" + Hash(data)
}

var _ Keyer = DefaultKeyer{}
