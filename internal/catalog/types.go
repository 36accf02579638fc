// Package catalog implements the per-entity domain managers over the
// relational schema of Spaces, Versions, Indexes, Vectors, Values, Metadata,
// Snapshots, and Tokens, plus the invariants that bind them.
package catalog

import "encoding/json"

// ValueKind is the shape of a vector's payload.
type ValueKind string

const (
	Dense       ValueKind = "dense"
	Sparse      ValueKind = "sparse"
	MultiVector ValueKind = "multi_vector"
	Combined    ValueKind = "combined"
)

// Metric is the distance function an Index is built over.
type Metric string

const (
	L2           Metric = "l2"
	Cosine       Metric = "cosine"
	InnerProduct Metric = "inner_product"
)

// ScalarType names the element width of a Scalar-quantized index.
type ScalarType string

const (
	Int8  ScalarType = "int8"
	UInt8 ScalarType = "uint8"
	Int4  ScalarType = "int4"
	FP16  ScalarType = "fp16"
)

// HNSWConfig carries the graph-construction parameters for an Index.
type HNSWConfig struct {
	M              int `json:"m"`
	EfConstruction int `json:"ef_construct"`
	EfSearch       int `json:"ef_search"`
}

// QuantType names the quantization strategy, if any, for an Index.
type QuantType string

const (
	QuantNone    QuantType = "none"
	QuantScalar  QuantType = "scalar"
	QuantProduct QuantType = "product"
)

// ScalarQuantConfig configures per-dimension scalar quantization.
type ScalarQuantConfig struct {
	Type      ScalarType `json:"type"`
	Quantile  float64    `json:"quantile"`
	AlwaysRAM bool       `json:"always_ram"`
}

// ProductQuantConfig configures sub-vector (product) quantization.
type ProductQuantConfig struct {
	Compression int  `json:"compression"`
	AlwaysRAM   bool `json:"always_ram"`
}

// QuantConfig is the sum of the three quantization strategies an Index may
// use; exactly one of Scalar/Product is populated when Type selects it.
type QuantConfig struct {
	Type    QuantType           `json:"type"`
	Scalar  *ScalarQuantConfig  `json:"scalar,omitempty"`
	Product *ProductQuantConfig `json:"product,omitempty"`
}

// MarshalConfig serialises v as the JSON string persisted in hnsw_cfg/quant_cfg.
func MarshalConfig(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Space is the top-level namespace of vectors identified by name.
type Space struct {
	ID          int64
	Name        string
	Description string
	CreatedUTC  int64
	UpdatedUTC  int64
}

// Version is a mutable generation of a Space's index configuration and data.
type Version struct {
	ID          int64
	SpaceID     int64
	UniqueID    int64
	Name        string
	Description string
	Tag         string
	IsDefault   bool
	CreatedUTC  int64
	UpdatedUTC  int64
}

// Index is a single ANN data structure attached to a Version.
type Index struct {
	ID         int64
	VersionID  int64
	ValueKind  ValueKind
	Name       string
	Metric     Metric
	Dimension  int
	HNSWConfig HNSWConfig
	QuantCfg   QuantConfig
	IsDefault  bool
	CreatedUTC int64
	UpdatedUTC int64
}

// Vector is a logical record identified by a per-version unique_id; its
// payload lives in one or more VectorValue rows (one per Index it is
// inserted into).
type Vector struct {
	ID         int64
	VersionID  int64
	UniqueID   int64
	Kind       ValueKind
	Deleted    bool
	CreatedUTC int64
	UpdatedUTC int64
}

// VectorValue holds the kind-dependent serialised payload of a Vector for a
// specific Index.
type VectorValue struct {
	ID       int64
	VectorID int64
	IndexID  int64
	Kind     ValueKind
	Payload  []byte
}

// VectorMetadata is one key/value attribute attached to a Vector; a Vector
// may carry many.
type VectorMetadata struct {
	ID       int64
	VectorID int64
	Key      string
	Value    string
}

// BM25Doc is the token-frequency record of a Vector's associated document.
type BM25Doc struct {
	VectorID         int64
	Doc              string
	DocLength         int
	TokensSerialised string
}

// Snapshot records one whole-database backup archive.
type Snapshot struct {
	ID          int64
	RequestJSON string
	FileName    string
	CreatedUTC  int64
}

// Permission is the access level a Token grants for one resource category.
type Permission int

const (
	Denied Permission = iota
	ReadOnly
	ReadWrite
)

// Permissions is the fixed set of eight resource categories a Token governs.
type Permissions struct {
	System   Permission
	Space    Permission
	Version  Permission
	Vector   Permission
	Search   Permission
	Snapshot Permission
	Security Permission
	KeyValue Permission
}

// Token is a signed bearer token with per-resource permission bits.
type Token struct {
	ID         int64
	TokenStr   string
	SpaceID    int64
	Perms      Permissions
	ExpireUTC  int64
}
