package catalog

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

func newTestManagers(t *testing.T) *Managers {
	t.Helper()
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewManagers(store)
}

func denseSpec(dim int) IndexSpec {
	spec := IndexSpec{ValueKind: Dense, Metric: L2, Dimension: dim}
	spec.ResolveDefaults(16, 100)
	return spec
}

func TestCreateSpaceHasOneDefaultVersionAndIndex(t *testing.T) {
	m := newTestManagers(t)

	space, version, indexes, err := m.CreateSpace("s1", "", map[string]IndexSpec{"dense": denseSpec(4)}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	if !version.IsDefault {
		t.Error("expected the created version to be default")
	}
	if len(indexes) != 1 || !indexes[0].IsDefault {
		t.Error("expected the single index to be default")
	}

	got, err := m.Space.GetByName("s1")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != space.ID {
		t.Errorf("GetByName returned id %d, want %d", got.ID, space.ID)
	}
}

func TestVersionAddMaintainsSingleDefault(t *testing.T) {
	m := newTestManagers(t)
	space, _, _, err := m.CreateSpace("s1", "", map[string]IndexSpec{"dense": denseSpec(4)}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	v2, err := m.Version.Add(space.ID, "v2", "", "", true)
	if err != nil {
		t.Fatalf("Version.Add: %v", err)
	}
	if !v2.IsDefault {
		t.Error("expected v2 to become default")
	}

	versions, err := m.Version.GetAll(space.ID)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	defaults := 0
	for _, v := range versions {
		if v.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("expected exactly one default version, got %d", defaults)
	}
	if v2.UniqueID != 2 {
		t.Errorf("expected v2 unique_id = 2, got %d", v2.UniqueID)
	}
}

func TestIndexDeleteReassignsDefault(t *testing.T) {
	m := newTestManagers(t)
	_, version, indexes, err := m.CreateSpace("s1", "", map[string]IndexSpec{"dense": denseSpec(4)}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	secondSpec := denseSpecNamed("sparse-copy", 4)
	secondSpec.IsDefault = true
	second, err := m.Index.Add(version.ID, secondSpec)
	if err != nil {
		t.Fatalf("Index.Add: %v", err)
	}
	if !second.IsDefault {
		t.Fatal("expected the second index to become default")
	}

	if err := m.Index.Delete(second.ID); err != nil {
		t.Fatalf("Index.Delete: %v", err)
	}

	first, err := m.Index.GetByID(indexes[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !first.IsDefault {
		t.Error("expected the first index to be promoted back to default")
	}
}

func denseSpecNamed(name string, dim int) IndexSpec {
	spec := denseSpec(dim)
	spec.Name = name
	return spec
}

func TestSpaceDeleteCascades(t *testing.T) {
	m := newTestManagers(t)
	space, version, indexes, err := m.CreateSpace("s1", "", map[string]IndexSpec{"dense": denseSpec(4)}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	v, err := m.Vector.Upsert(version.ID, nil, Dense)
	if err != nil {
		t.Fatalf("Vector.Upsert: %v", err)
	}
	if err := m.Value.Replace(v.ID, indexes[0].ID, Dense, []byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("Value.Replace: %v", err)
	}
	if err := m.Metadata.ReplaceAll(v.ID, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Metadata.ReplaceAll: %v", err)
	}

	if err := m.Space.Delete(space.ID); err != nil {
		t.Fatalf("Space.Delete: %v", err)
	}

	if _, err := m.Space.GetByID(space.ID); KindOf(err) != NotFound {
		t.Errorf("expected space to be gone, got err %v", err)
	}
	if _, err := m.Version.GetByID(version.ID); KindOf(err) != NotFound {
		t.Errorf("expected version to be gone, got err %v", err)
	}
	if _, err := m.Vector.GetByID(v.ID); KindOf(err) != NotFound {
		t.Errorf("expected vector row to be gone, got err %v", err)
	}
}

func TestUpsertVectorIsIdempotentOnID(t *testing.T) {
	m := newTestManagers(t)
	_, version, indexes, err := m.CreateSpace("s1", "", map[string]IndexSpec{"dense": denseSpec(4)}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	uid := int64(1)
	in := UpsertVectorInput{
		VersionID: version.ID, UniqueID: &uid, IndexID: indexes[0].ID, Kind: Dense,
		Payload: []byte{1, 2, 3, 4}, Metadata: map[string]string{"category": "A"},
	}

	first, err := m.UpsertVector(in)
	if err != nil {
		t.Fatalf("first UpsertVector: %v", err)
	}
	in.Payload = []byte{5, 6, 7, 8}
	in.Metadata = map[string]string{"category": "B"}
	second, err := m.UpsertVector(in)
	if err != nil {
		t.Fatalf("second UpsertVector: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected repeated upsert to reuse the same internal id, got %d and %d", first.ID, second.ID)
	}

	md, err := m.Metadata.GetAll(second.ID)
	if err != nil {
		t.Fatalf("Metadata.GetAll: %v", err)
	}
	if md["category"] != "B" {
		t.Errorf("expected last-writer metadata 'B', got %q", md["category"])
	}

	val, err := m.Value.Get(second.ID, indexes[0].ID)
	if err != nil {
		t.Fatalf("Value.Get: %v", err)
	}
	if string(val.Payload) != string([]byte{5, 6, 7, 8}) {
		t.Error("expected last-writer payload to win")
	}
}

func TestBM25TokenSerialisationAccumulatesFrequency(t *testing.T) {
	serialised := SerialiseTokens([]string{"cat", "dog", "cat", "cat"})
	freq := DeserialiseTokens(serialised)
	if freq["cat"] != 3 {
		t.Errorf("expected cat frequency 3, got %d", freq["cat"])
	}
	if freq["dog"] != 1 {
		t.Errorf("expected dog frequency 1, got %d", freq["dog"])
	}
}
