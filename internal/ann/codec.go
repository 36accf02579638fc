// Package ann wraps a per-Index HNSW graph (github.com/coder/hnsw) with the
// catalog-facing contract: build/add/search/save/load/restore_from_catalog,
// plus the dense/sparse/multi-vector payload codecs and scalar/product
// quantizers the catalog's VectorValue.payload blobs are encoded with.
package ann

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// EncodeDense packs vec as little-endian f32, the Dense VectorValue wire
// format.
func EncodeDense(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], float32ToBits(f))
	}
	return buf
}

// DecodeDense unpacks a Dense VectorValue payload into a float32 slice.
func DecodeDense(payload []byte) ([]float32, error) {
	if len(payload)%4 != 0 {
		return nil, catalog.Newf(catalog.BadRequest, "dense payload length %d not a multiple of 4", len(payload))
	}
	out := make([]float32, len(payload)/4)
	for i := range out {
		out[i] = bitsToFloat32(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return out, nil
}

// SparseVector is an index/value pair list, ascending by index.
type SparseVector struct {
	Indices []int32
	Values  []float32
}

// EncodeSparse packs sv as `count:i32 | indices[count]:i32 | values[count]:f32`.
func EncodeSparse(sv SparseVector) []byte {
	n := len(sv.Indices)
	buf := make([]byte, 4+n*4+n*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	for i, idx := range sv.Indices {
		binary.LittleEndian.PutUint32(buf[4+i*4:], uint32(idx))
	}
	base := 4 + n*4
	for i, v := range sv.Values {
		binary.LittleEndian.PutUint32(buf[base+i*4:], float32ToBits(v))
	}
	return buf
}

// DecodeSparse unpacks a Sparse VectorValue payload, validating that indices
// are strictly ascending and within [0, dimension).
func DecodeSparse(payload []byte, dimension int) (SparseVector, error) {
	if len(payload) < 4 {
		return SparseVector{}, catalog.Newf(catalog.BadRequest, "sparse payload too short")
	}
	n := int(binary.LittleEndian.Uint32(payload[0:4]))
	need := 4 + n*4 + n*4
	if len(payload) < need {
		return SparseVector{}, catalog.Newf(catalog.BadRequest, "sparse payload truncated: want %d bytes, got %d", need, len(payload))
	}
	sv := SparseVector{Indices: make([]int32, n), Values: make([]float32, n)}
	prev := int32(-1)
	for i := 0; i < n; i++ {
		idx := int32(binary.LittleEndian.Uint32(payload[4+i*4:]))
		if idx <= prev || int(idx) >= dimension {
			return SparseVector{}, catalog.Newf(catalog.BadRequest, "sparse index %d out of range or not ascending", idx)
		}
		prev = idx
		sv.Indices[i] = idx
	}
	base := 4 + n*4
	for i := 0; i < n; i++ {
		sv.Values[i] = bitsToFloat32(binary.LittleEndian.Uint32(payload[base+i*4:]))
	}
	return sv, nil
}

// Densify expands a sparse vector into a zero-padded dense vector of length
// dimension, the contract §4.4 requires before HNSW insertion. Out-of-range
// indices are silently dropped (documented behaviour).
func Densify(sv SparseVector, dimension int) []float32 {
	out := make([]float32, dimension)
	for i, idx := range sv.Indices {
		if int(idx) < 0 || int(idx) >= dimension {
			continue
		}
		out[idx] = sv.Values[i]
	}
	return out
}

// MultiVector is a set of equal-width rows (e.g. a ColBERT-style token matrix).
type MultiVector struct {
	Rows [][]float32
}

// EncodeMultiVector packs mv as `rows:i32 | f32 packed row-major`.
func EncodeMultiVector(mv MultiVector) []byte {
	rows := len(mv.Rows)
	cols := 0
	if rows > 0 {
		cols = len(mv.Rows[0])
	}
	buf := make([]byte, 4+rows*cols*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(rows))
	off := 4
	for _, row := range mv.Rows {
		for _, f := range row {
			binary.LittleEndian.PutUint32(buf[off:], float32ToBits(f))
			off += 4
		}
	}
	return buf
}

// DecodeMultiVector unpacks a MultiVector VectorValue payload; the column
// count is inferred as remaining-bytes/4/rows.
func DecodeMultiVector(payload []byte) (MultiVector, error) {
	if len(payload) < 4 {
		return MultiVector{}, catalog.Newf(catalog.BadRequest, "multi_vector payload too short")
	}
	rows := int(binary.LittleEndian.Uint32(payload[0:4]))
	remaining := payload[4:]
	if rows == 0 {
		if len(remaining) != 0 {
			return MultiVector{}, catalog.Newf(catalog.BadRequest, "multi_vector declares 0 rows but has trailing data")
		}
		return MultiVector{}, nil
	}
	if len(remaining)%(4*rows) != 0 {
		return MultiVector{}, fmt.Errorf("multi_vector payload %d bytes not divisible by %d rows", len(remaining), rows)
	}
	cols := len(remaining) / 4 / rows
	mv := MultiVector{Rows: make([][]float32, rows)}
	off := 0
	for r := 0; r < rows; r++ {
		row := make([]float32, cols)
		for c := 0; c < cols; c++ {
			row[c] = bitsToFloat32(binary.LittleEndian.Uint32(remaining[off:]))
			off += 4
		}
		mv.Rows[r] = row
	}
	return mv, nil
}

func float32ToBits(f float32) uint32 { return math.Float32bits(f) }
func bitsToFloat32(b uint32) float32 { return math.Float32frombits(b) }
