// Package bm25 computes Okapi BM25 scores over a caller-supplied working set
// of vector ids, reading the token-frequency dictionary package catalog
// maintains. Fixed constants k1=1.5, b=0.75, matching §4.6.
package bm25

import (
	"math"
	"sort"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

const (
	k1 = 1.5
	b  = 0.75
)

// WorkingSet loads only the requested rows, the BM25 search contract's
// "never scans the whole corpus" requirement.
type WorkingSet interface {
	GetWorkingSet(vectorIDs []int64) (map[int64]*catalog.BM25Doc, error)
}

// Score is one vector's BM25 result.
type Score struct {
	VectorID int64
	Score    float64
}

// SearchWithIDs computes a BM25 score per vector in vectorIDs against
// queryTokens, restricted to documents found in the working set (vectors
// with no BM25Doc score 0). Results are descending by score, ties broken by
// ascending vector id.
func SearchWithIDs(docs WorkingSet, vectorIDs []int64, queryTokens []string) ([]Score, error) {
	working, err := docs.GetWorkingSet(vectorIDs)
	if err != nil {
		return nil, err
	}

	n := len(vectorIDs)
	var totalLength int
	for _, id := range vectorIDs {
		if d, ok := working[id]; ok {
			totalLength += d.DocLength
		}
	}
	avgLength := 0.0
	if n > 0 {
		avgLength = float64(totalLength) / float64(n)
	}

	docFreq := make(map[string]int, len(queryTokens))
	termFreqByDoc := make(map[int64]map[string]int, len(working))
	for _, id := range vectorIDs {
		d, ok := working[id]
		if !ok {
			continue
		}
		freqs := catalog.DeserialiseTokens(d.TokensSerialised)
		termFreqByDoc[id] = freqs
		for _, t := range queryTokens {
			if freqs[t] > 0 {
				docFreq[t]++
			}
		}
	}

	idf := make(map[string]float64, len(queryTokens))
	for _, t := range queryTokens {
		df := float64(docFreq[t])
		idf[t] = math.Log((float64(n)-df+0.5)/(df+0.5) + 1)
	}

	out := make([]Score, 0, n)
	for _, id := range vectorIDs {
		var score float64
		if freqs, ok := termFreqByDoc[id]; ok {
			d := working[id]
			docLen := float64(d.DocLength)
			for _, t := range queryTokens {
				tf := float64(freqs[t])
				if tf == 0 {
					continue
				}
				normTF := tf * (k1 + 1) / (tf + k1*(1-b+b*docLen/avgLengthOrOne(avgLength)))
				score += idf[t] * normTF
			}
		}
		out = append(out, Score{VectorID: id, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].VectorID < out[j].VectorID
	})
	return out, nil
}

func avgLengthOrOne(avg float64) float64 {
	if avg == 0 {
		return 1
	}
	return avg
}
