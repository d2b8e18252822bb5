package graph

import (
	"bytes"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/model"
)

// Marshal converts a universe to indented JSON.
func Marshal(u *model.Universe, meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(u, meta, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a universe as JSON to w.
func Write(u *model.Universe, meta Meta, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromUniverse(u, meta)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// WriteFile writes a universe to a JSON file with 0644 permissions.
func WriteFile(u *model.Universe, meta Meta, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(u, meta, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a snapshot from r.
func Read(r io.Reader) (*model.Universe, Meta, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "decode snapshot")
	}
	u, _, err := ToUniverse(g)
	if err != nil {
		return nil, Meta{}, err
	}
	return u, Meta{Project: g.Project, Digest: g.Digest}, nil
}

// Unmarshal decodes a snapshot from bytes.
func Unmarshal(data []byte) (*model.Universe, Meta, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile reads a snapshot file.
func ReadFile(path string) (*model.Universe, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s not found", path)
		}
		return nil, Meta{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

func errUnsupportedVersion(v int) error {
	return errors.New(errors.ErrCodeUnsupported, "snapshot format version %d is newer than supported version %d", v, FormatVersion)
}

func errInvalidTable(id string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidMetadata, err, "table %q", id)
}
