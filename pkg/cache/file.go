package cache

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// entryExt marks cache entry files inside the cache directory.
const entryExt = ".entry"

// FileCache stores each entry as a file under dir, sharded by the first two
// hex characters of the key hash. An entry file holds the expiry as unix
// nanoseconds (0 for none) on its first line, followed by the raw data.
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).UnixNano()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	buf := strconv.AppendInt(nil, expires, 10)
	buf = append(buf, '\n')
	if _, err := tmp.Write(append(buf, data...)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry file and returns how many were deleted. Empty
// shard directories are removed as well.
func (c *FileCache) Clear() (int, error) {
	return c.sweep(func([]byte) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// deleted.
func (c *FileCache) Prune() (int, error) {
	now := time.Now()
	return c.sweep(func(raw []byte) bool {
		_, expires, ok := decodeEntry(raw)
		return !ok || (!expires.IsZero() && now.After(expires))
	})
}

// sweep deletes the entry files whose contents drop returns true for.
func (c *FileCache) sweep(drop func(raw []byte) bool) (int, error) {
	n := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if drop(raw) && os.Remove(path) == nil {
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}

	shards, _ := os.ReadDir(c.dir)
	for _, s := range shards {
		if s.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, s.Name())) // fails unless empty
		}
	}
	return n, nil
}

func decodeEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	head, data, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return nil, time.Time{}, false
	}
	ns, err := strconv.ParseInt(string(head), 10, 64)
	if err != nil {
		return nil, time.Time{}, false
	}
	if ns != 0 {
		expires = time.Unix(0, ns)
	}
	return data, expires, true
}

var _ Cache = (*FileCache)(nil)
