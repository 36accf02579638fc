package ann

import (
	"math/rand"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// trainingSeed is the fixed seed for the synthetic training sample a freshly
// created Scalar-quantized index trains on when no real data has been
// inserted yet. Reproducible across runs, per the original's training
// contract.
const trainingSeed = 42

// syntheticTrainingSet returns 100 uniform-in-[0,1) vectors of dimension
// width, generated with a fixed seed — the deterministic stand-in for real
// training data.
func syntheticTrainingSet(dimension int) [][]float32 {
	r := rand.New(rand.NewSource(trainingSeed))
	out := make([][]float32, 100)
	for i := range out {
		row := make([]float32, dimension)
		for j := range row {
			row[j] = r.Float32()
		}
		out[i] = row
	}
	return out
}

// ScalarQuantizer maps float32 components onto a narrower integer range
// derived from training data's observed min/max per dimension.
type ScalarQuantizer struct {
	cfg     catalog.ScalarQuantConfig
	min     []float32
	max     []float32
	trained bool
}

// NewScalarQuantizer builds an untrained quantizer for cfg.
func NewScalarQuantizer(cfg catalog.ScalarQuantConfig) *ScalarQuantizer {
	return &ScalarQuantizer{cfg: cfg}
}

// Train fits per-dimension min/max bounds from samples. If samples is empty,
// it trains on the synthetic 100-vector set sized to dimension, satisfying
// the "empty index is usable before ingest" contract.
func (q *ScalarQuantizer) Train(samples [][]float32, dimension int) {
	if len(samples) == 0 {
		samples = syntheticTrainingSet(dimension)
	}
	q.min = make([]float32, dimension)
	q.max = make([]float32, dimension)
	for d := 0; d < dimension; d++ {
		q.min[d] = samples[0][d]
		q.max[d] = samples[0][d]
	}
	for _, s := range samples {
		for d := 0; d < dimension; d++ {
			if s[d] < q.min[d] {
				q.min[d] = s[d]
			}
			if s[d] > q.max[d] {
				q.max[d] = s[d]
			}
		}
	}
	q.trained = true
}

func (q *ScalarQuantizer) levels() float64 {
	switch q.cfg.Type {
	case catalog.Int4:
		return 15
	case catalog.Int8, catalog.UInt8:
		return 255
	default: // FP16 passes through without level quantization
		return 0
	}
}

// Quantize maps vec into its quantized representation, returned as float32
// for uniform downstream handling (the narrower storage width is a save()
// concern, not a search-path one).
func (q *ScalarQuantizer) Quantize(vec []float32) []float32 {
	if !q.trained || q.cfg.Type == catalog.FP16 {
		return vec
	}
	levels := q.levels()
	out := make([]float32, len(vec))
	for d, v := range vec {
		span := float64(q.max[d] - q.min[d])
		if span == 0 {
			out[d] = v
			continue
		}
		norm := (float64(v) - float64(q.min[d])) / span
		if norm < 0 {
			norm = 0
		} else if norm > 1 {
			norm = 1
		}
		step := float64(int(norm*levels+0.5)) / levels
		out[d] = float32(float64(q.min[d]) + step*span)
	}
	return out
}

// ProductQuantizer splits a vector into fixed sub-vectors and quantizes each
// independently — a fixed 4 sub-vectors at 8 bits unless compression
// overrides the sub-vector count.
type ProductQuantizer struct {
	cfg        catalog.ProductQuantConfig
	subvectors int
	centroids  [][][]float32 // [subvector][centroid] -> sub-vector values
	trained    bool
}

const defaultSubvectors = 4
const bitsPerSubvector = 8
const centroidsPerSubvector = 1 << bitsPerSubvector

// NewProductQuantizer builds an untrained quantizer for cfg.
func NewProductQuantizer(cfg catalog.ProductQuantConfig) *ProductQuantizer {
	sub := defaultSubvectors
	if cfg.Compression > 0 {
		sub = cfg.Compression
	}
	return &ProductQuantizer{cfg: cfg, subvectors: sub}
}

// Train picks per-subvector centroids from samples (or the synthetic set,
// same empty-index contract as Scalar): evenly strided samples are taken as
// the centroids as they are, with no k-means assignment/update step.
func (q *ProductQuantizer) Train(samples [][]float32, dimension int) {
	if len(samples) == 0 {
		samples = syntheticTrainingSet(dimension)
	}
	width := dimension / q.subvectors
	if width == 0 {
		width = dimension
		q.subvectors = 1
	}
	q.centroids = make([][][]float32, q.subvectors)
	for sv := 0; sv < q.subvectors; sv++ {
		start := sv * width
		end := start + width
		if sv == q.subvectors-1 {
			end = dimension
		}
		q.centroids[sv] = kMeansCentroids(samples, start, end, centroidsPerSubvector)
	}
	q.trained = true
}

func kMeansCentroids(samples [][]float32, start, end, k int) [][]float32 {
	if k > len(samples) {
		k = len(samples)
	}
	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		stride := len(samples) / k
		centroids[i] = append([]float32(nil), samples[i*stride][start:end]...)
	}
	return centroids
}

// Quantize reconstructs vec from its nearest centroid per sub-vector — the
// lossy approximation product quantization trades for memory.
func (q *ProductQuantizer) Quantize(vec []float32) []float32 {
	if !q.trained {
		return vec
	}
	width := len(vec) / q.subvectors
	out := make([]float32, 0, len(vec))
	for sv := 0; sv < q.subvectors; sv++ {
		start := sv * width
		end := start + width
		if sv == q.subvectors-1 {
			end = len(vec)
		}
		out = append(out, nearestCentroid(vec[start:end], q.centroids[sv])...)
	}
	return out
}

func nearestCentroid(sub []float32, centroids [][]float32) []float32 {
	best, bestDist := centroids[0], sqDist(sub, centroids[0])
	for _, c := range centroids[1:] {
		if d := sqDist(sub, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}
