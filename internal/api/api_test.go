package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/config"
	"github.com/tinyvectordb/tinyvectordb/internal/runtime"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DBName = ":memory:"
	cfg.DataPath = t.TempDir()

	rt, err := runtime.Open(cfg)
	if err != nil {
		t.Fatalf("runtime.Open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	return NewServer(rt)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCreateAndGetSpaceEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/v1/spaces", map[string]any{
		"name":  "demo",
		"dense": map[string]any{"metric": "l2", "dimension": 3},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/spaces/demo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var space struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &space); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if space.Name != "demo" {
		t.Errorf("space name = %q, want demo", space.Name)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	cfg := config.Default()
	cfg.DBName = ":memory:"
	cfg.DataPath = t.TempDir()
	cfg.RequireAuth = true

	rt, err := runtime.Open(cfg)
	if err != nil {
		t.Fatalf("runtime.Open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	s := NewServer(rt)

	w := doRequest(t, s, http.MethodGet, "/api/v1/spaces", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body = %s", w.Code, w.Body.String())
	}

	// health stays exempt even with auth required.
	w = doRequest(t, s, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
}

func TestGetUnknownSpaceReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/api/v1/spaces/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestUpsertVectorThenSearchEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/v1/spaces", map[string]any{
		"name":  "demo",
		"dense": map[string]any{"metric": "l2", "dimension": 2},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create space status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/spaces/demo/vectors", map[string]any{
		"vectors": []map[string]any{
			{"data": []float32{1, 0}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("upsert status = %d, body = %s", w.Code, w.Body.String())
	}
	var vectors []struct {
		UniqueID int64 `json:"unique_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &vectors); err != nil {
		t.Fatalf("unmarshal vectors: %v", err)
	}
	if len(vectors) != 1 || vectors[0].UniqueID == 0 {
		t.Fatalf("expected one vector with a nonzero unique_id, body = %s", w.Body.String())
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/spaces/demo/search", map[string]any{
		"vector": []float32{0.9, 0.1},
		"k":      5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var hits []struct {
		Label int64 `json:"label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
		t.Fatalf("unmarshal hits: %v", err)
	}
	if len(hits) != 1 || hits[0].Label != vectors[0].UniqueID {
		t.Errorf("expected the upserted vector to rank first, got %+v", hits)
	}
}
