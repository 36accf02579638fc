package ann

import (
	"path/filepath"
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

func testIndex(dimension int, metric catalog.Metric) *catalog.Index {
	spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: metric, Dimension: dimension}
	spec.ResolveDefaults(16, 100)
	return &catalog.Index{
		ID: 1, ValueKind: spec.ValueKind, Metric: spec.Metric,
		Dimension: spec.Dimension, HNSWConfig: spec.HNSWConfig, QuantCfg: spec.QuantCfg,
	}
}

func TestBuildAddSearchL2(t *testing.T) {
	m := New(testIndex(3, catalog.L2), filepath.Join(t.TempDir(), "idx.idx"))
	if err := m.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := m.Add(1, []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add(2, []float32{0, 1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := m.Search([]float32{0.9, 0.1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].UniqueID != 1 {
		t.Errorf("expected unique_id 1 nearest, got %+v", results)
	}
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	m := New(testIndex(3, catalog.L2), filepath.Join(t.TempDir(), "idx.idx"))
	if err := m.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	err := m.Add(1, []float32{1, 0})
	if catalog.KindOf(err) != catalog.BadRequest {
		t.Errorf("expected BadRequest, got %v", err)
	}
}

func TestSearchInnerProductOrdersByRawDotProductNotMagnitude(t *testing.T) {
	m := New(testIndex(2, catalog.InnerProduct), filepath.Join(t.TempDir(), "idx.idx"))
	if err := m.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Varying norms: id2 has a far larger magnitude than id1 but the same
	// direction, so a magnitude-invariant (cosine) ranking would rate them
	// equal while raw inner product correctly ranks id2 above id1.
	points := map[int64][]float32{
		1: {0.1, 0},
		2: {5, 0},
		3: {0, 1},
		4: {-2, 0},
	}
	for id, vec := range points {
		if err := m.Add(id, vec); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}

	results, err := m.Search([]float32{1, 0}, 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	wantOrder := []int64{2, 1, 3, 4}
	for i, want := range wantOrder {
		if results[i].UniqueID != want {
			t.Errorf("result[%d].UniqueID = %d, want %d (order %+v)", i, results[i].UniqueID, want, results)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance > results[i-1].Distance {
			t.Errorf("results not sorted by descending reported distance: %+v", results)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.idx")
	m := New(testIndex(2, catalog.L2), path)
	if err := m.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Add(7, []float32{1, 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := New(testIndex(2, catalog.L2), path)
	if err := reloaded.Load(nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Errorf("expected 1 point reloaded, got %d", reloaded.Len())
	}
}
