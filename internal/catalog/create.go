package catalog

import (
	"sort"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// Managers bundles every domain manager over one Store, the dependency set
// a service layer (facade, hybrid retrieval) needs.
type Managers struct {
	Space    *SpaceManager
	Version  *VersionManager
	Index    *IndexManager
	Vector   *VectorManager
	Value    *ValueManager
	Metadata *MetadataManager
	BM25Doc  *BM25DocManager
	Snapshot *SnapshotManager
	Token    *TokenManager

	store *database.Store
}

// NewManagers builds every domain manager over store.
func NewManagers(store *database.Store) *Managers {
	return &Managers{
		Space:    NewSpaceManager(store),
		Version:  NewVersionManager(store),
		Index:    NewIndexManager(store),
		Vector:   NewVectorManager(store),
		Value:    NewValueManager(store),
		Metadata: NewMetadataManager(store),
		BM25Doc:  NewBM25DocManager(store),
		Snapshot: NewSnapshotManager(store),
		Token:    NewTokenManager(store),
		store:    store,
	}
}

// Store exposes the underlying catalog store for components (ANN engine,
// snapshot archiver) that need direct access alongside the managers.
func (m *Managers) Store() *database.Store { return m.store }

// CreateSpace implements the Space lifecycle: a Space creates exactly one
// default Version and the Index configuration(s) it carries, all inside one
// transaction so a failure midway leaves no partial Space behind.
func (m *Managers) CreateSpace(name, description string, indexSpecs map[string]IndexSpec, defaultIndexName string) (*Space, *Version, []*Index, error) {
	if !ValidateName(name) {
		return nil, nil, nil, Newf(BadRequest, "invalid space name %q", name)
	}
	if len(indexSpecs) == 0 {
		return nil, nil, nil, Newf(BadRequest, "at least one index configuration is required")
	}

	tx, err := m.store.Begin()
	if err != nil {
		return nil, nil, nil, Wrap(Storage, err)
	}
	defer tx.Rollback()

	now := clock.NowUTC()
	res, err := tx.Exec(`INSERT INTO spaces (name, description, created_utc, updated_utc) VALUES (?, ?, ?, ?)`,
		name, description, now, now)
	if err != nil {
		return nil, nil, nil, Wrap(Storage, err)
	}
	spaceID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, nil, Wrap(Storage, err)
	}

	version, err := m.Version.addTx(tx, spaceID, "default", "", "", true)
	if err != nil {
		return nil, nil, nil, err
	}

	// Map iteration order is unspecified; sort names so the "first
	// encountered becomes default" fallback below is deterministic.
	names := make([]string, 0, len(indexSpecs))
	for name := range indexSpecs {
		names = append(names, name)
	}
	sort.Strings(names)

	var indexes []*Index
	for _, indexName := range names {
		spec := indexSpecs[indexName]
		spec.Name = indexName
		spec.IsDefault = indexName == defaultIndexName || (defaultIndexName == "" && len(indexes) == 0)
		idx, err := m.Index.addTx(tx, version.ID, spec)
		if err != nil {
			return nil, nil, nil, err
		}
		indexes = append(indexes, idx)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, Wrap(Storage, err)
	}

	space := &Space{ID: spaceID, Name: name, Description: description, CreatedUTC: now, UpdatedUTC: now}
	return space, version, indexes, nil
}
