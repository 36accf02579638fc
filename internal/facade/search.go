package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/hybrid"
)

// SearchHandle is the Search service's manager handle.
type SearchHandle struct {
	engine *hybrid.Engine
}

// NewSearchHandle builds a SearchHandle over engine.
func NewSearchHandle(engine *hybrid.Engine) *SearchHandle {
	return &SearchHandle{engine: engine}
}

type searchRequest struct {
	SpaceID         int64             `json:"space_id"`
	VersionUniqueID int64             `json:"version_unique_id"`
	Vector          []float32         `json:"vector,omitempty"`
	SparseData      *ann.SparseVector `json:"sparse_data,omitempty"`
	Tokens          []string          `json:"tokens,omitempty"`
	Filter          string            `json:"filter,omitempty"`
	K               int               `json:"k"`
}

// plainHit is the §6 "[{distance, label}]" shape a non-hybrid (no tokens)
// search returns.
type plainHit struct {
	Distance float32 `json:"distance"`
	Label    int64   `json:"label"`
}

// hybridHit is the §6 "[{id, distance, bm25_score}]" shape a hybrid
// (tokens present) rerank returns.
type hybridHit struct {
	ID        int64   `json:"id"`
	Distance  float32 `json:"distance"`
	BM25Score float64 `json:"bm25_score"`
}

// Search handles the §6 search ABI call. A request with no "tokens" is a
// plain ANN search and renders "[{distance, label}]"; a request with
// "tokens" runs the BM25 rerank and renders "[{id, distance, bm25_score}]".
func (h *SearchHandle) Search(req []byte) ([]byte, error) {
	var in searchRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}

	hits, err := h.engine.Search(hybrid.Query{
		SpaceID:         in.SpaceID,
		VersionUniqueID: in.VersionUniqueID,
		Vector:          in.Vector,
		Sparse:          in.SparseData,
		Tokens:          in.Tokens,
		Filter:          in.Filter,
		K:               in.K,
	})
	if err != nil {
		return errorResponse(err), nil
	}

	if len(in.Tokens) == 0 {
		out := make([]plainHit, 0, len(hits))
		for _, hit := range hits {
			out = append(out, plainHit{Distance: hit.Distance, Label: hit.ID})
		}
		return json.Marshal(out)
	}

	out := make([]hybridHit, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hybridHit{ID: hit.ID, Distance: hit.Distance, BM25Score: hit.BM25Score})
	}
	return json.Marshal(out)
}
