// Package diskcache implements the namespaced, TTL-bounded key-value cache
// spec.md §4.9 describes for external-source responses.
//
// The atomic write (temp file + rename) is the same idiom internal/cardstore
// uses for card files, here applied to cache entries; per spec.md §5 this
// also makes concurrent writers from independent sources safe, since every
// entry file is named by the hash of its key and replaced whole by rename.
package diskcache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"
)

// Cache is a single namespace within a cache root, e.g. <root>/crossref.
type Cache struct {
	dir string
	ttl time.Duration
}

// Open returns a Cache rooted at <root>/<namespace>, creating the directory
// if necessary.
func Open(root, namespace string, ttl time.Duration) (*Cache, error) {
	dir := filepath.Join(root, namespace)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir %q: %w", dir, err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

type entry struct {
	StoredAt int64           `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

func (c *Cache) path(key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h.Sum(nil))+".json")
}

// Get returns the cached value for key, decoding it into out, iff the entry
// exists and is within TTL. A corrupt or expired entry is treated as a
// miss (ok = false) and, for an expired entry, removed.
func (c *Cache) Get(key string, out any) (ok bool, err error) {
	p := c.path(key)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = os.Remove(p)
		return false, nil
	}

	if time.Since(time.Unix(e.StoredAt, 0)) > c.ttl {
		_ = os.Remove(p)
		return false, nil
	}

	if err := json.Unmarshal(e.Value, out); err != nil {
		_ = os.Remove(p)
		return false, nil
	}
	return true, nil
}

// Set writes value for key unconditionally, overwriting any prior entry.
func (c *Cache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{StoredAt: time.Now().Unix(), Value: raw})
	if err != nil {
		return err
	}

	p := c.path(key)
	tmp, err := os.CreateTemp(c.dir, ".entry-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, p)
}

// Invalidate removes the entry for key, if any.
func (c *Cache) Invalidate(key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
