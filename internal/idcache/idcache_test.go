package idcache

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

func newTestCache(t *testing.T) (*Cache, *catalog.Managers) {
	t.Helper()
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	managers := catalog.NewManagers(store)
	return New(managers), managers
}

func TestSpaceIDResolvesAndMemoises(t *testing.T) {
	cache, managers := newTestCache(t)
	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 4}
	spec.ResolveDefaults(16, 100)
	space, _, _, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{"dense": spec}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	id, err := cache.SpaceID("s1")
	if err != nil {
		t.Fatalf("SpaceID: %v", err)
	}
	if id != space.ID {
		t.Errorf("want %d, got %d", space.ID, id)
	}

	id2, err := cache.SpaceID("s1")
	if err != nil || id2 != id {
		t.Errorf("second lookup should hit cache with same result, got %d, %v", id2, err)
	}
}

func TestInvalidateSpaceClearsEntries(t *testing.T) {
	cache, managers := newTestCache(t)
	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 4}
	spec.ResolveDefaults(16, 100)
	space, _, _, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{"dense": spec}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	if _, err := cache.SpaceID("s1"); err != nil {
		t.Fatalf("SpaceID: %v", err)
	}

	cache.InvalidateSpace("s1", space.ID)

	if err := managers.Space.Delete(space.ID); err != nil {
		t.Fatalf("Space.Delete: %v", err)
	}
	if _, err := cache.SpaceID("s1"); catalog.KindOf(err) != catalog.NotFound {
		t.Errorf("expected NotFound after invalidation + delete, got %v", err)
	}
}

func TestVersionZeroResolvesDefault(t *testing.T) {
	cache, managers := newTestCache(t)
	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 4}
	spec.ResolveDefaults(16, 100)
	space, version, indexes, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{"dense": spec}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	entry, err := cache.Version(space.ID, 0)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if entry.VersionID != version.ID {
		t.Errorf("want version id %d, got %d", version.ID, entry.VersionID)
	}

	indexID, err := cache.DefaultIndexID(space.ID, 0, catalog.Dense)
	if err != nil {
		t.Fatalf("DefaultIndexID: %v", err)
	}
	if indexID != indexes[0].ID {
		t.Errorf("want default index id %d, got %d", indexes[0].ID, indexID)
	}

	// second lookup should hit the per-kind memoised value, not re-scan.
	indexID2, err := cache.DefaultIndexID(space.ID, 0, catalog.Dense)
	if err != nil || indexID2 != indexID {
		t.Errorf("second lookup should hit cache with same result, got %d, %v", indexID2, err)
	}
}
