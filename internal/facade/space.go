package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// SpaceHandle is the Space service's manager handle.
type SpaceHandle struct {
	managers *catalog.Managers
}

// NewSpaceHandle builds a SpaceHandle over managers.
func NewSpaceHandle(managers *catalog.Managers) *SpaceHandle {
	return &SpaceHandle{managers: managers}
}

// hnswConfigRequest mirrors the §6 "create space" wire shape, which spells
// efConstruction as "ef_construct" (not "ef_construction" as the catalog's
// own HNSWConfig does).
type hnswConfigRequest struct {
	M           int `json:"m"`
	EfConstruct int `json:"ef_construct"`
}

type scalarQuantRequest struct {
	Type      string  `json:"type"`
	Quantile  float64 `json:"quantile"`
	AlwaysRAM bool    `json:"always_ram"`
}

type quantizationConfigRequest struct {
	Scalar *scalarQuantRequest `json:"scalar,omitempty"`
}

// indexSpecRequest is the "dense"/"sparse"/named-index shape from §6; every
// field is optional so it can also serve as the top-level default-inheritance
// object (a request may set "dimension"/"metric"/"hnsw_config"/
// "quantization_config" at the top level to seed defaults for "dense" and
// every named index).
type indexSpecRequest struct {
	Dimension          int                        `json:"dimension,omitempty"`
	Metric             string                     `json:"metric,omitempty"`
	HNSWConfig         *hnswConfigRequest         `json:"hnsw_config,omitempty"`
	QuantizationConfig *quantizationConfigRequest `json:"quantization_config,omitempty"`
}

// withDefaults returns a copy of r with any zero field filled in from def,
// realising the top-level default-inheritance rule in §6.
func (r indexSpecRequest) withDefaults(def indexSpecRequest) indexSpecRequest {
	if r.Dimension == 0 {
		r.Dimension = def.Dimension
	}
	if r.Metric == "" {
		r.Metric = def.Metric
	}
	if r.HNSWConfig == nil {
		r.HNSWConfig = def.HNSWConfig
	}
	if r.QuantizationConfig == nil {
		r.QuantizationConfig = def.QuantizationConfig
	}
	return r
}

func (r indexSpecRequest) toCatalogSpec(valueKind catalog.ValueKind) catalog.IndexSpec {
	spec := catalog.IndexSpec{
		ValueKind: valueKind,
		Metric:    parseMetric(r.Metric),
		Dimension: r.Dimension,
	}
	if r.HNSWConfig != nil {
		spec.HNSWConfig.M = r.HNSWConfig.M
		spec.HNSWConfig.EfConstruction = r.HNSWConfig.EfConstruct
	}
	if r.QuantizationConfig != nil && r.QuantizationConfig.Scalar != nil {
		sc := r.QuantizationConfig.Scalar
		spec.QuantCfg = catalog.QuantConfig{
			Type: catalog.QuantScalar,
			Scalar: &catalog.ScalarQuantConfig{
				Type:      catalog.ScalarType(sc.Type),
				Quantile:  sc.Quantile,
				AlwaysRAM: sc.AlwaysRAM,
			},
		}
	}
	spec.ResolveDefaults(16, 100)
	return spec
}

// createSpaceRequest is the §6 "create space" request: a "dense" index (or
// bare top-level fields standing in for it), an optional "sparse" index, and
// any number of additional named "indexes", with top-level
// dimension/metric/hnsw_config/quantization_config as defaults inherited by
// all of them.
type createSpaceRequest struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Dense       *indexSpecRequest           `json:"dense,omitempty"`
	Sparse      *indexSpecRequest           `json:"sparse,omitempty"`
	Indexes     map[string]indexSpecRequest `json:"indexes,omitempty"`

	indexSpecRequest // top-level default-inheritance fields, embedded
}

type spaceResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedUTC  int64  `json:"created_utc"`
	UpdatedUTC  int64  `json:"updated_utc"`
}

func toSpaceResponse(s *catalog.Space) spaceResponse {
	return spaceResponse{ID: s.ID, Name: s.Name, Description: s.Description, CreatedUTC: s.CreatedUTC, UpdatedUTC: s.UpdatedUTC}
}

func parseMetric(s string) catalog.Metric {
	switch s {
	case "cosine":
		return catalog.Cosine
	case "inner_product":
		return catalog.InnerProduct
	default:
		return catalog.L2
	}
}

// Create handles the §6 "create space" ABI call: parses req, builds the
// space with its index configuration(s), and returns the created Space.
//
// The request may supply a "dense" object, a "sparse" object, any number of
// named "indexes", or bare top-level dimension/metric/hnsw_config/
// quantization_config fields that stand in for "dense" and seed defaults for
// every index (§6's inheritance rule). At least one of those must resolve to
// a dense or named index with a non-zero dimension.
func (h *SpaceHandle) Create(req []byte) ([]byte, error) {
	var in createSpaceRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}

	defaults := in.indexSpecRequest
	specs := make(map[string]catalog.IndexSpec)

	dense := in.Dense
	if dense == nil && defaults.Dimension != 0 {
		dense = &indexSpecRequest{}
	}
	if dense != nil {
		specs["dense"] = dense.withDefaults(defaults).toCatalogSpec(catalog.Dense)
	}

	if in.Sparse != nil {
		specs["sparse"] = in.Sparse.withDefaults(defaults).toCatalogSpec(catalog.Sparse)
	}

	for name, r := range in.Indexes {
		specs[name] = r.withDefaults(defaults).toCatalogSpec(catalog.Dense)
	}

	space, _, _, err := h.managers.CreateSpace(in.Name, in.Description, specs, "")
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(toSpaceResponse(space))
}

// Get handles the §6 "get space by name" ABI call.
func (h *SpaceHandle) Get(req []byte) ([]byte, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	space, err := h.managers.Space.GetByName(in.Name)
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(toSpaceResponse(space))
}

// List handles the §6 "list spaces" ABI call.
func (h *SpaceHandle) List(_ []byte) ([]byte, error) {
	spaces, err := h.managers.Space.GetAll()
	if err != nil {
		return errorResponse(err), nil
	}
	out := make([]spaceResponse, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, toSpaceResponse(s))
	}
	return json.Marshal(out)
}

// Delete handles the §6 "delete space" ABI call, cascading to every
// version/index/vector it owns.
func (h *SpaceHandle) Delete(req []byte) ([]byte, error) {
	var in struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	if err := h.managers.Space.Delete(in.ID); err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]bool{"deleted": true})
}
