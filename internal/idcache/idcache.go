// Package idcache is the process-wide lookup accelerator in front of the
// catalog: space name → space id, (space id, version unique id) → (version
// id, default index id), the reverse index id → (space, version) mapping,
// and token string → Token. A miss falls through to the catalog and
// memoises the result; mutations invalidate the affected entries.
package idcache

import (
	"sync"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// VersionKey names a (space_id, version_unique_id) pair; unique_id 0 is the
// sentinel for "the default version".
type VersionKey struct {
	SpaceID   int64
	UniqueID  int64
}

// VersionEntry is what a VersionKey resolves to. defaultIndexID is filled
// lazily, per value kind, by DefaultIndexID; a map is used (rather than a
// fixed Dense/Sparse pair) since it is a reference type, so mutating it
// through a VersionEntry copy still updates the one stored in Cache.versions.
type VersionEntry struct {
	VersionID      int64
	defaultIndexID map[catalog.ValueKind]int64
}

// IndexLocation is the reverse mapping from an index id back to the
// (space name, version unique id) it belongs to.
type IndexLocation struct {
	SpaceName       string
	VersionUniqueID int64
}

// Cache is the shared, thread-safe lookup accelerator. The zero value is not
// usable; construct with New.
type Cache struct {
	mu sync.RWMutex

	spaceIDByName map[string]int64
	versions      map[VersionKey]VersionEntry
	indexLocation map[int64]IndexLocation
	tokens        map[string]*catalog.Token

	managers *catalog.Managers
}

// New builds a Cache backed by managers for cache-miss resolution.
func New(managers *catalog.Managers) *Cache {
	return &Cache{
		spaceIDByName: make(map[string]int64),
		versions:      make(map[VersionKey]VersionEntry),
		indexLocation: make(map[int64]IndexLocation),
		tokens:        make(map[string]*catalog.Token),
		managers:      managers,
	}
}

// SpaceID resolves a Space name to its internal id, memoising on first read.
func (c *Cache) SpaceID(name string) (int64, error) {
	c.mu.RLock()
	if id, ok := c.spaceIDByName[name]; ok {
		c.mu.RUnlock()
		return id, nil
	}
	c.mu.RUnlock()

	space, err := c.managers.Space.GetByName(name)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.spaceIDByName[name] = space.ID
	c.mu.Unlock()
	return space.ID, nil
}

// Version resolves (spaceID, versionUniqueID) to its VersionEntry.
// versionUniqueID == 0 means "the default version of the space".
func (c *Cache) Version(spaceID, versionUniqueID int64) (VersionEntry, error) {
	key := VersionKey{SpaceID: spaceID, UniqueID: versionUniqueID}

	c.mu.RLock()
	if entry, ok := c.versions[key]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	var version *catalog.Version
	var err error
	if versionUniqueID == 0 {
		version, err = c.managers.Version.DefaultFor(spaceID)
	} else {
		version, err = c.managers.Version.GetByUniqueID(spaceID, versionUniqueID)
	}
	if err != nil {
		return VersionEntry{}, err
	}

	entry := VersionEntry{VersionID: version.ID, defaultIndexID: make(map[catalog.ValueKind]int64)}

	c.mu.Lock()
	c.versions[key] = entry
	c.mu.Unlock()

	return entry, nil
}

// DefaultIndexID resolves the default Index id of (spaceID, versionUniqueID)
// for value kind, memoising per (version, kind) so repeat Search/Upsert
// calls on the same index skip straight to a primary-key catalog lookup
// instead of re-running the default-index scan every time.
func (c *Cache) DefaultIndexID(spaceID, versionUniqueID int64, kind catalog.ValueKind) (int64, error) {
	entry, err := c.Version(spaceID, versionUniqueID)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	id, ok := entry.defaultIndexID[kind]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	idx, err := c.managers.Index.DefaultFor(entry.VersionID, kind)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	entry.defaultIndexID[kind] = idx.ID
	if space, err := c.managers.Space.GetByID(spaceID); err == nil {
		if version, err := c.managers.Version.GetByID(entry.VersionID); err == nil {
			c.indexLocation[idx.ID] = IndexLocation{SpaceName: space.Name, VersionUniqueID: version.UniqueID}
		}
	}
	c.mu.Unlock()

	return idx.ID, nil
}

// IndexLocation resolves an index id back to its (space name, version
// unique id), for components that only hold an index id.
func (c *Cache) IndexLocation(indexID int64) (IndexLocation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	loc, ok := c.indexLocation[indexID]
	return loc, ok
}

// Token resolves a JWT string to its Token row, rejecting (by treating as a
// miss) anything already evicted.
func (c *Cache) Token(tokenStr string) (*catalog.Token, error) {
	c.mu.RLock()
	if t, ok := c.tokens[tokenStr]; ok {
		c.mu.RUnlock()
		return t, nil
	}
	c.mu.RUnlock()

	t, err := c.managers.Token.GetByToken(tokenStr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tokens[tokenStr] = t
	c.mu.Unlock()
	return t, nil
}

// InvalidateSpace drops every entry derived from a Space: its name→id
// mapping and every Version/IndexLocation entry under it. Called after
// Space mutation or deletion.
func (c *Cache) InvalidateSpace(name string, spaceID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.spaceIDByName, name)
	for key := range c.versions {
		if key.SpaceID == spaceID {
			delete(c.versions, key)
		}
	}
	for indexID, loc := range c.indexLocation {
		if loc.SpaceName == name {
			delete(c.indexLocation, indexID)
		}
	}
}

// InvalidateVersion drops one (spaceID, versionUniqueID) entry, and its
// default-index sentinel (versionUniqueID 0) since the two may now disagree.
func (c *Cache) InvalidateVersion(spaceID, versionUniqueID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.versions, VersionKey{SpaceID: spaceID, UniqueID: versionUniqueID})
	delete(c.versions, VersionKey{SpaceID: spaceID, UniqueID: 0})
}

// InvalidateIndex drops the reverse index→location entry, called after
// Index deletion or default-reassignment.
func (c *Cache) InvalidateIndex(indexID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.indexLocation, indexID)
}

// InvalidateToken drops one cached Token, called after update/delete.
func (c *Cache) InvalidateToken(tokenStr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, tokenStr)
}

// InvalidateAll clears every entry, used on snapshot restore.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spaceIDByName = make(map[string]int64)
	c.versions = make(map[VersionKey]VersionEntry)
	c.indexLocation = make(map[int64]IndexLocation)
	c.tokens = make(map[string]*catalog.Token)
}
