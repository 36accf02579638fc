package hybrid

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
	"github.com/tinyvectordb/tinyvectordb/internal/idcache"
)

type fakeIndexSource struct {
	managers *catalog.Managers
}

func (f fakeIndexSource) Get(indexID int64) (*ann.Manager, error) {
	idx, err := f.managers.Index.GetByID(indexID)
	if err != nil {
		return nil, err
	}
	m := ann.New(idx, "/dev/null")
	if err := m.Build(); err != nil {
		return nil, err
	}
	return m, nil
}

func newTestEngine(t *testing.T) (*Engine, *catalog.Managers, *catalog.Space, *catalog.Index) {
	t.Helper()
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	managers := catalog.NewManagers(store)

	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 2}
	spec.ResolveDefaults(16, 100)
	space, _, indexes, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{"dense": spec}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	cache := idcache.New(managers)
	engine := New(cache, fakeIndexSource{managers}, managers, nil)
	return engine, managers, space, indexes[0]
}

func TestSearchReturnsANNOrderedHits(t *testing.T) {
	engine, managers, space, idx := newTestEngine(t)

	v1, err := managers.UpsertVector(catalog.UpsertVectorInput{
		VersionID: idx.VersionID, IndexID: idx.ID, Kind: catalog.Dense,
		Payload: ann.EncodeDense([]float32{1, 0}),
	})
	if err != nil {
		t.Fatalf("UpsertVector: %v", err)
	}
	v2, err := managers.UpsertVector(catalog.UpsertVectorInput{
		VersionID: idx.VersionID, IndexID: idx.ID, Kind: catalog.Dense,
		Payload: ann.EncodeDense([]float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("UpsertVector: %v", err)
	}

	src := fakeIndexSource{managers}
	manager, err := src.Get(idx.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := manager.Add(v1.UniqueID, []float32{1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := manager.Add(v2.UniqueID, []float32{0, 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	engine.indexes = fixedSource{manager}

	hits, err := engine.Search(Query{SpaceID: space.ID, Vector: []float32{0.9, 0.1}, K: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != v1.UniqueID {
		t.Errorf("expected v1 closest, got %+v", hits)
	}
}

type fixedSource struct{ m *ann.Manager }

func (f fixedSource) Get(indexID int64) (*ann.Manager, error) { return f.m, nil }
