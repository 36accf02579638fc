package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/idcache"
)

// IndexSource loads the ANN Manager for an index id; indexcache.Cache
// satisfies this.
type IndexSource interface {
	Get(indexID int64) (*ann.Manager, error)
}

// VectorHandle is the Vector service's manager handle.
type VectorHandle struct {
	managers *catalog.Managers
	cache    *idcache.Cache
	indexes  IndexSource
}

// NewVectorHandle builds a VectorHandle over managers, the Id-cache, and the
// Index LRU.
func NewVectorHandle(managers *catalog.Managers, cache *idcache.Cache, indexes IndexSource) *VectorHandle {
	return &VectorHandle{managers: managers, cache: cache, indexes: indexes}
}

// vectorItemRequest is one entry of the §6 "upsert vectors" request: a
// dense payload ("data"), a sparse payload ("sparse_data"), or neither is an
// error caught downstream when both the Dense and Sparse defaults resolve to
// empty.
type vectorItemRequest struct {
	ID         *int64            `json:"id,omitempty"`
	Data       []float32         `json:"data,omitempty"`
	SparseData *ann.SparseVector `json:"sparse_data,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Doc        string            `json:"doc,omitempty"`
	DocTokens  []string          `json:"doc_tokens,omitempty"`
}

// upsertVectorsRequest is the §6 "upsert vectors" request. "vectors" is the
// primary form; "data" is the positional alias the schema also allows.
type upsertVectorsRequest struct {
	SpaceID         int64               `json:"space_id"`
	VersionUniqueID int64               `json:"version_unique_id"`
	Vectors         []vectorItemRequest `json:"vectors,omitempty"`
	Data            []vectorItemRequest `json:"data,omitempty"`
}

func (in upsertVectorsRequest) items() []vectorItemRequest {
	if len(in.Vectors) > 0 {
		return in.Vectors
	}
	return in.Data
}

type vectorResponse struct {
	ID       int64 `json:"id"`
	UniqueID int64 `json:"unique_id"`
}

// Upsert handles the §6 "upsert vectors" ABI call: persists each vector row,
// its per-index payload and metadata, then adds it to the live ANN graph so
// it is immediately searchable. Returns one vectorResponse per input item.
func (h *VectorHandle) Upsert(req []byte) ([]byte, error) {
	var in upsertVectorsRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}

	versionEntry, err := h.cache.Version(in.SpaceID, in.VersionUniqueID)
	if err != nil {
		return errorResponse(err), nil
	}

	items := in.items()
	out := make([]vectorResponse, 0, len(items))
	for _, item := range items {
		kind := catalog.Dense
		vec := item.Data
		var payload []byte
		if item.SparseData != nil {
			kind = catalog.Sparse
			payload = ann.EncodeSparse(*item.SparseData)
		} else {
			payload = ann.EncodeDense(vec)
		}

		indexID, err := h.cache.DefaultIndexID(in.SpaceID, in.VersionUniqueID, kind)
		if err != nil {
			return errorResponse(err), nil
		}
		idx, err := h.managers.Index.GetByID(indexID)
		if err != nil {
			return errorResponse(err), nil
		}

		v, err := h.managers.UpsertVector(catalog.UpsertVectorInput{
			VersionID: versionEntry.VersionID,
			UniqueID:  item.ID,
			IndexID:   idx.ID,
			Kind:      kind,
			Payload:   payload,
			Metadata:  item.Metadata,
			Doc:       item.Doc,
			DocTokens: item.DocTokens,
		})
		if err != nil {
			return errorResponse(err), nil
		}

		manager, err := h.indexes.Get(idx.ID)
		if err != nil {
			return errorResponse(err), nil
		}
		if item.SparseData != nil {
			vec = ann.Densify(*item.SparseData, idx.Dimension)
		}
		if err := manager.Add(v.UniqueID, vec); err != nil {
			return errorResponse(err), nil
		}

		out = append(out, vectorResponse{ID: v.ID, UniqueID: v.UniqueID})
	}

	return json.Marshal(out)
}

// Get handles the §6 "get vector" ABI call, returning its metadata.
func (h *VectorHandle) Get(req []byte) ([]byte, error) {
	var in struct {
		SpaceID         int64 `json:"space_id"`
		VersionUniqueID int64 `json:"version_unique_id"`
		UniqueID        int64 `json:"unique_id"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	versionEntry, err := h.cache.Version(in.SpaceID, in.VersionUniqueID)
	if err != nil {
		return errorResponse(err), nil
	}
	v, err := h.managers.Vector.GetByUniqueID(versionEntry.VersionID, in.UniqueID)
	if err != nil {
		return errorResponse(err), nil
	}
	metadata, err := h.managers.Metadata.GetAll(v.ID)
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]any{
		"id":        v.ID,
		"unique_id": v.UniqueID,
		"metadata":  metadata,
	})
}
