package bm25

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

type fakeWorkingSet map[int64]*catalog.BM25Doc

func (f fakeWorkingSet) GetWorkingSet(ids []int64) (map[int64]*catalog.BM25Doc, error) {
	out := map[int64]*catalog.BM25Doc{}
	for _, id := range ids {
		if d, ok := f[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func doc(vectorID int64, tokens []string) *catalog.BM25Doc {
	return &catalog.BM25Doc{
		VectorID:         vectorID,
		DocLength:        len(tokens),
		TokensSerialised: catalog.SerialiseTokens(tokens),
	}
}

func TestSearchWithIDsRanksByRelevance(t *testing.T) {
	docs := fakeWorkingSet{
		1: doc(1, []string{"cat", "dog", "cat"}),
		2: doc(2, []string{"dog", "dog", "dog"}),
		3: doc(3, []string{"bird"}),
	}

	results, err := SearchWithIDs(docs, []int64{1, 2, 3}, []string{"cat"})
	if err != nil {
		t.Fatalf("SearchWithIDs: %v", err)
	}
	if results[0].VectorID != 1 {
		t.Errorf("expected vector 1 to score highest for query 'cat', got order %+v", results)
	}
	if results[len(results)-1].Score != 0 {
		t.Errorf("expected vector with no matching tokens to score 0, got %+v", results[len(results)-1])
	}
}

func TestSearchWithIDsTiesBreakByAscendingID(t *testing.T) {
	docs := fakeWorkingSet{
		5: doc(5, []string{"x"}),
		2: doc(2, []string{"x"}),
	}
	results, err := SearchWithIDs(docs, []int64{5, 2}, []string{"x"})
	if err != nil {
		t.Fatalf("SearchWithIDs: %v", err)
	}
	if results[0].VectorID != 2 || results[1].VectorID != 5 {
		t.Errorf("expected tie-break ascending by vector id, got %+v", results)
	}
}
