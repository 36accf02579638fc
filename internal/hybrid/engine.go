// Package hybrid implements the §4.7 hybrid retrieval pipeline: resolve
// (space, version) via the Id-cache, load the matching Index via the Index
// LRU, run ANN top-k, optionally filter by metadata, optionally rerank by
// BM25, and return the combined, deterministically-ordered result set.
package hybrid

import (
	"sort"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/bm25"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/idcache"
)

// IndexSource loads the ANN Manager for an index id, the Index LRU's seam.
type IndexSource interface {
	Get(indexID int64) (*ann.Manager, error)
}

// Engine ties the Id-cache, Index LRU, catalog managers, and BM25 engine
// into one retrieval pipeline.
type Engine struct {
	cache    *idcache.Cache
	indexes  IndexSource
	managers *catalog.Managers
	filter   Evaluator
}

// New builds an Engine. filter may be nil, in which case EqualityEvaluator
// is used.
func New(cache *idcache.Cache, indexes IndexSource, managers *catalog.Managers, filter Evaluator) *Engine {
	if filter == nil {
		filter = EqualityEvaluator{}
	}
	return &Engine{cache: cache, indexes: indexes, managers: managers, filter: filter}
}

// Query is the parsed request body from §6's Search request.
type Query struct {
	SpaceID         int64
	VersionUniqueID int64 // 0 means default
	Vector          []float32
	Sparse          *ann.SparseVector
	Tokens          []string
	Filter          string
	K               int
}

// Hit is one ranked result, the §6 "[{id, distance, bm25_score}]" shape.
type Hit struct {
	ID        int64
	Distance  float32
	BM25Score float64
}

// Search runs the full pipeline for q and returns ranked Hits.
func (e *Engine) Search(q Query) ([]Hit, error) {
	versionEntry, err := e.cache.Version(q.SpaceID, q.VersionUniqueID)
	if err != nil {
		return nil, err
	}

	kind := catalog.Dense
	if q.Sparse != nil {
		kind = catalog.Sparse
	}
	indexID, err := e.cache.DefaultIndexID(q.SpaceID, q.VersionUniqueID, kind)
	if err != nil {
		return nil, err
	}
	idx, err := e.managers.Index.GetByID(indexID)
	if err != nil {
		return nil, err
	}

	manager, err := e.indexes.Get(idx.ID)
	if err != nil {
		return nil, err
	}

	queryVec := q.Vector
	if q.Sparse != nil {
		queryVec = ann.Densify(*q.Sparse, idx.Dimension)
	}

	k := q.K
	if k <= 0 {
		k = 10
	}
	annResults, err := manager.Search(queryVec, k)
	if err != nil {
		return nil, err
	}

	vectorIDs := make([]int64, 0, len(annResults))
	distanceByUniqueID := make(map[int64]float32, len(annResults))
	for _, r := range annResults {
		vectorIDs = append(vectorIDs, r.UniqueID)
		distanceByUniqueID[r.UniqueID] = r.Distance
	}

	if q.Filter != "" {
		vectorIDs, err = e.applyFilter(versionEntry.VersionID, vectorIDs, q.Filter)
		if err != nil {
			return nil, err
		}
	}

	scoreByID := map[int64]float64{}
	if len(q.Tokens) > 0 {
		internalIDs, idByUnique, err := e.resolveInternalIDs(versionEntry.VersionID, vectorIDs)
		if err != nil {
			return nil, err
		}
		scores, err := bm25.SearchWithIDs(e.managers.BM25Doc, internalIDs, q.Tokens)
		if err != nil {
			return nil, err
		}
		for _, s := range scores {
			if uniqueID, ok := idByUnique[s.VectorID]; ok {
				scoreByID[uniqueID] = s.Score
			}
		}
	}

	hits := make([]Hit, 0, len(vectorIDs))
	for _, id := range vectorIDs {
		hits = append(hits, Hit{ID: id, Distance: distanceByUniqueID[id], BM25Score: scoreByID[id]})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].BM25Score != hits[j].BM25Score {
			return hits[i].BM25Score > hits[j].BM25Score
		}
		return hits[i].Distance < hits[j].Distance
	})

	return hits, nil
}

func (e *Engine) applyFilter(versionID int64, uniqueIDs []int64, filter string) ([]int64, error) {
	internalIDs, idByUnique, err := e.resolveInternalIDs(versionID, uniqueIDs)
	if err != nil {
		return nil, err
	}
	metadataByInternalID, err := e.managers.Metadata.GetAllForVectors(internalIDs)
	if err != nil {
		return nil, err
	}

	internalByUnique := make(map[int64]int64, len(idByUnique))
	for internalID, uniqueID := range idByUnique {
		internalByUnique[uniqueID] = internalID
	}

	var out []int64
	for _, uniqueID := range uniqueIDs {
		ok, err := e.filter.Matches(filter, metadataByInternalID[internalByUnique[uniqueID]])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, uniqueID)
		}
	}
	return out, nil
}

// resolveInternalIDs maps external unique ids back to catalog internal ids
// (BM25/metadata storage is keyed by internal id, ANN results are keyed by
// unique id).
func (e *Engine) resolveInternalIDs(versionID int64, uniqueIDs []int64) (internalIDs []int64, idByUnique map[int64]int64, err error) {
	idByUnique = make(map[int64]int64, len(uniqueIDs))
	for _, uid := range uniqueIDs {
		v, err := e.managers.Vector.GetByUniqueID(versionID, uid)
		if err != nil {
			continue
		}
		internalIDs = append(internalIDs, v.ID)
		idByUnique[v.ID] = uid
	}
	return internalIDs, idByUnique, nil
}
