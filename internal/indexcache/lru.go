// Package indexcache bounds how many ANN Managers are held in memory at
// once: a capacity-limited LRU keyed by index id, backed by
// github.com/hashicorp/golang-lru/v2. Missing entries are constructed from
// the Index catalog row and immediately loaded (file if present, else
// rebuilt from the catalog).
package indexcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/logging"
)

var log = logging.GetLogger("indexcache")

// PathResolver maps an Index row to its on-disk file path; implemented by
// the runtime, which knows the Space/Version name path components.
type PathResolver func(idx *catalog.Index) (string, error)

// Cache is the bounded index_id → *ann.Manager LRU, plus the catalog
// dependencies needed to construct an evicted/missing entry.
type Cache struct {
	managers   *catalog.Managers
	resolve    PathResolver
	underlying *lru.Cache[int64, *ann.Manager]
}

// New builds a Cache with the given capacity (the HNSW_INDEX_CACHE_CAPACITY
// configuration value; default 100).
func New(managers *catalog.Managers, resolve PathResolver, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = 100
	}
	underlying, err := lru.NewWithEvict[int64, *ann.Manager](capacity, func(indexID int64, m *ann.Manager) {
		if err := m.Save(); err != nil {
			log.Warn("failed to save evicted index", "index_id", indexID, "error", err)
		}
	})
	if err != nil {
		return nil, catalog.Wrap(catalog.Internal, err)
	}
	return &Cache{managers: managers, resolve: resolve, underlying: underlying}, nil
}

// Get returns the Manager for indexID, constructing and loading it from the
// catalog row on a miss.
func (c *Cache) Get(indexID int64) (*ann.Manager, error) {
	if m, ok := c.underlying.Get(indexID); ok {
		return m, nil
	}

	idx, err := c.managers.Index.GetByID(indexID)
	if err != nil {
		return nil, err
	}
	path, err := c.resolve(idx)
	if err != nil {
		return nil, err
	}

	m := ann.New(idx, path)
	if err := m.Load(valueManagerSource{c.managers, indexID}); err != nil {
		return nil, err
	}

	c.underlying.Add(indexID, m)
	return m, nil
}

// valueManagerSource adapts catalog.ValueManager.ListForIndex to ann.RestoreSource.
type valueManagerSource struct {
	managers *catalog.Managers
	indexID  int64
}

func (s valueManagerSource) ListForIndex(indexID int64) ([]catalog.ValueRow, error) {
	return s.managers.Value.ListForIndex(indexID)
}

// Remove evicts indexID; like any eviction, this runs the eviction callback,
// which saves the Manager to its file.
func (c *Cache) Remove(indexID int64) {
	c.underlying.Remove(indexID)
}

// Purge evicts every entry, running the eviction callback (which saves the
// Manager to its file) for each one.
func (c *Cache) Purge() {
	c.underlying.Purge()
}

// Len reports how many Managers are currently cached.
func (c *Cache) Len() int {
	return c.underlying.Len()
}
