package indexcache

import (
	"path/filepath"
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

func TestGetConstructsAndCaches(t *testing.T) {
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	managers := catalog.NewManagers(store)

	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 4}
	spec.ResolveDefaults(16, 100)
	_, _, indexes, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{"dense": spec}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	dir := t.TempDir()
	cache, err := New(managers, func(idx *catalog.Index) (string, error) {
		return filepath.Join(dir, "index.idx"), nil
	}, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m1, err := cache.Get(indexes[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m2, err := cache.Get(indexes[0].ID)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if m1 != m2 {
		t.Error("expected the second Get to return the same cached Manager instance")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", cache.Len())
	}
}
