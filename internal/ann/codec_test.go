package ann

import (
	"reflect"
	"testing"
)

func TestDenseRoundTrip(t *testing.T) {
	vec := []float32{1.5, -2.25, 0, 3.125}
	payload := EncodeDense(vec)
	got, err := DecodeDense(payload)
	if err != nil {
		t.Fatalf("DecodeDense: %v", err)
	}
	if !reflect.DeepEqual(vec, got) {
		t.Errorf("round trip mismatch: want %v, got %v", vec, got)
	}
}

func TestSparseRoundTrip(t *testing.T) {
	sv := SparseVector{Indices: []int32{1, 3, 7}, Values: []float32{0.5, -1, 2}}
	payload := EncodeSparse(sv)
	got, err := DecodeSparse(payload, 8)
	if err != nil {
		t.Fatalf("DecodeSparse: %v", err)
	}
	if !reflect.DeepEqual(sv, got) {
		t.Errorf("round trip mismatch: want %+v, got %+v", sv, got)
	}
}

func TestSparseRejectsOutOfRange(t *testing.T) {
	sv := SparseVector{Indices: []int32{5}, Values: []float32{1}}
	payload := EncodeSparse(sv)
	if _, err := DecodeSparse(payload, 4); err == nil {
		t.Fatal("expected an out-of-range index to be rejected")
	}
}

func TestDensify(t *testing.T) {
	sv := SparseVector{Indices: []int32{0, 2}, Values: []float32{1, 2}}
	got := Densify(sv, 4)
	want := []float32{1, 0, 2, 0}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Densify: want %v, got %v", want, got)
	}
}

func TestMultiVectorRoundTrip(t *testing.T) {
	mv := MultiVector{Rows: [][]float32{{1, 2, 3}, {4, 5, 6}}}
	payload := EncodeMultiVector(mv)
	got, err := DecodeMultiVector(payload)
	if err != nil {
		t.Fatalf("DecodeMultiVector: %v", err)
	}
	if !reflect.DeepEqual(mv, got) {
		t.Errorf("round trip mismatch: want %+v, got %+v", mv, got)
	}
}
