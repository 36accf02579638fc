package facade

import (
	"encoding/json"
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/config"
	"github.com/tinyvectordb/tinyvectordb/internal/runtime"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	cfg := config.Default()
	cfg.DBName = ":memory:"
	cfg.DataPath = t.TempDir()

	rt, err := runtime.Open(cfg)
	if err != nil {
		t.Fatalf("runtime.Open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	return New(rt)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestSpaceCreateGetList(t *testing.T) {
	f := newTestFacade(t)

	createReq := mustJSON(t, map[string]any{
		"name":  "demo",
		"dense": map[string]any{"metric": "l2", "dimension": 4},
	})
	out, err := f.Space.Create(createReq)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var env ErrorEnvelope
	if json.Unmarshal(out, &env) == nil && env.Error.Code != 0 {
		t.Fatalf("Create returned error envelope: %+v", env)
	}

	getOut, err := f.Space.Get(mustJSON(t, map[string]string{"name": "demo"}))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var space spaceResponse
	if err := json.Unmarshal(getOut, &space); err != nil {
		t.Fatalf("unmarshal space: %v", err)
	}
	if space.Name != "demo" {
		t.Errorf("space name = %q, want demo", space.Name)
	}

	listOut, err := f.Space.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var spaces []spaceResponse
	if err := json.Unmarshal(listOut, &spaces); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(spaces) != 1 {
		t.Errorf("expected 1 space, got %d", len(spaces))
	}
}

func TestSpaceGetUnknownNameReturnsErrorEnvelope(t *testing.T) {
	f := newTestFacade(t)
	out, err := f.Space.Get(mustJSON(t, map[string]string{"name": "missing"}))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Error.Code == 0 {
		t.Errorf("expected a nonzero ABI error code, got %+v", env)
	}
}

func TestVectorUpsertThenSearch(t *testing.T) {
	f := newTestFacade(t)

	createReq := mustJSON(t, map[string]any{
		"name":  "demo",
		"dense": map[string]any{"metric": "l2", "dimension": 2},
	})
	if _, err := f.Space.Create(createReq); err != nil {
		t.Fatalf("Create space: %v", err)
	}
	spaceOut, err := f.Space.Get(mustJSON(t, map[string]string{"name": "demo"}))
	if err != nil {
		t.Fatalf("Get space: %v", err)
	}
	var space spaceResponse
	if err := json.Unmarshal(spaceOut, &space); err != nil {
		t.Fatalf("unmarshal space: %v", err)
	}

	upsertOut, err := f.Vector.Upsert(mustJSON(t, map[string]any{
		"space_id": space.ID,
		"vectors": []map[string]any{
			{"data": []float32{1, 0}},
		},
	}))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	var vectors []vectorResponse
	if err := json.Unmarshal(upsertOut, &vectors); err != nil {
		t.Fatalf("unmarshal vectors: %v (body=%s)", err, upsertOut)
	}
	if len(vectors) != 1 || vectors[0].UniqueID == 0 {
		t.Fatalf("expected one vector with a nonzero unique id, got %+v (body=%s)", vectors, upsertOut)
	}

	searchOut, err := f.Search.Search(mustJSON(t, map[string]any{
		"space_id": space.ID,
		"vector":   []float32{0.9, 0.1},
		"k":        5,
	}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var hits []plainHit
	if err := json.Unmarshal(searchOut, &hits); err != nil {
		t.Fatalf("unmarshal hits: %v (body=%s)", err, searchOut)
	}
	if len(hits) != 1 || hits[0].Label != vectors[0].UniqueID {
		t.Errorf("expected the upserted vector to rank first, got %+v", hits)
	}
}
