package ann

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/logging"
)

var log = logging.GetLogger("ann")

// Result is one ranked hit from Search.
type Result struct {
	UniqueID int64
	Distance float32
}

// state is the per-Manager lifecycle, the §4.4 state machine.
type state int

const (
	created state = iota
	empty
	populated
)

// Manager is the per-Index ANN engine: a HNSW graph keyed directly by the
// Vector's external unique_id (the generic key parameter of
// github.com/coder/hnsw stands in for the separate internal-label indirection
// a non-generic implementation would otherwise need — using unique_id as the
// graph key directly is the identity id-map).
type Manager struct {
	mu sync.RWMutex

	indexID   int64
	valueKind catalog.ValueKind
	metric    catalog.Metric
	dimension int
	hnswCfg   catalog.HNSWConfig
	quantCfg  catalog.QuantConfig
	path      string

	graph    *hnsw.Graph[int64]
	points   map[int64][]float32 // mirrors the graph's contents for save()/Len(), since the graph itself exposes no iterator
	scalarQ  *ScalarQuantizer
	productQ *ProductQuantizer
	st       state
}

// New builds an unloaded Manager for idx, with its index file at path.
func New(idx *catalog.Index, path string) *Manager {
	return &Manager{
		indexID:   idx.ID,
		valueKind: idx.ValueKind,
		metric:    idx.Metric,
		dimension: idx.Dimension,
		hnswCfg:   idx.HNSWConfig,
		quantCfg:  idx.QuantCfg,
		path:      path,
		st:        created,
	}
}

// Build creates the backing HNSW graph sized for cfg, training any
// configured quantizer. Cosine is realised as inner-product on unit vectors:
// every inserted or queried vector is L2-normalised up front and the graph's
// distance function is the plain dot-product/Euclidean one.
func (m *Manager) Build() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := hnsw.NewGraph[int64]()
	if m.hnswCfg.M > 0 {
		g.M = m.hnswCfg.M
	}
	if m.hnswCfg.EfSearch > 0 {
		g.EfSearch = m.hnswCfg.EfSearch
	}
	switch m.metric {
	case catalog.InnerProduct:
		// hnsw.CosineDistance normalises internally, which would rank/prune
		// candidates by magnitude-invariant cosine similarity while
		// distanceOf reports the raw, magnitude-sensitive dot product for
		// the same nodes — an inconsistent ordering for vectors of varying
		// norm. negativeInnerProduct is the same raw dot product distanceOf
		// computes, sign-flipped so the graph's "smallest wins" traversal
		// agrees with "largest dot product is closest".
		g.Distance = negativeInnerProduct
	default: // Cosine is pre-normalised, so Euclidean on unit vectors applies too
		g.Distance = hnsw.EuclideanDistance
	}
	m.graph = g
	m.points = make(map[int64][]float32)

	switch m.quantCfg.Type {
	case catalog.QuantScalar:
		cfg := catalog.ScalarQuantConfig{}
		if m.quantCfg.Scalar != nil {
			cfg = *m.quantCfg.Scalar
		}
		m.scalarQ = NewScalarQuantizer(cfg)
		m.scalarQ.Train(nil, m.dimension)
	case catalog.QuantProduct:
		cfg := catalog.ProductQuantConfig{}
		if m.quantCfg.Product != nil {
			cfg = *m.quantCfg.Product
		}
		m.productQ = NewProductQuantizer(cfg)
		m.productQ.Train(nil, m.dimension)
	}

	m.st = empty
	return nil
}

func normalizeUnit(vec []float32) []float32 {
	var sumSq float64
	for _, f := range vec {
		sumSq += float64(f) * float64(f)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, f := range vec {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func (m *Manager) prepare(vec []float32) ([]float32, error) {
	if len(vec) != m.dimension {
		return nil, catalog.Newf(catalog.BadRequest, "dimension mismatch: index %d wants %d, got %d", m.indexID, m.dimension, len(vec))
	}
	if m.metric == catalog.Cosine {
		vec = normalizeUnit(vec)
	}
	if m.scalarQ != nil {
		vec = m.scalarQ.Quantize(vec)
	}
	if m.productQ != nil {
		vec = m.productQ.Quantize(vec)
	}
	return vec, nil
}

// Add inserts a single point. The index must already be loaded.
func (m *Manager) Add(uniqueID int64, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == created {
		return catalog.Newf(catalog.Internal, "index %d not loaded", m.indexID)
	}
	prepared, err := m.prepare(vec)
	if err != nil {
		return err
	}
	m.graph.Add(hnsw.MakeNode(uniqueID, prepared))
	m.points[uniqueID] = prepared
	m.st = populated
	return nil
}

// Search returns up to k hits ordered closest-first.
func (m *Manager) Search(query []float32, k int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == created {
		return nil, catalog.Newf(catalog.Internal, "index %d not loaded", m.indexID)
	}
	prepared, err := m.prepare(query)
	if err != nil {
		return nil, err
	}
	nodes := m.graph.Search(prepared, k)
	out := make([]Result, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Result{UniqueID: n.Key, Distance: distanceOf(m.metric, prepared, n.Value)})
	}
	return out, nil
}

// negativeInnerProduct is the graph traversal distance for InnerProduct
// indexes: the negated raw dot product, so the library's "smallest distance
// wins" selection ranks candidates in exactly the order distanceOf reports
// them (largest dot product first), regardless of vector magnitude.
func negativeInnerProduct(a, b []float32) float32 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(-dot)
}

func distanceOf(metric catalog.Metric, a, b []float32) float32 {
	switch metric {
	case catalog.InnerProduct, catalog.Cosine:
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return float32(dot)
	default:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return float32(math.Sqrt(sum))
	}
}

// RestoreSource supplies the catalog rows needed to repopulate an index.
type RestoreSource interface {
	ListForIndex(indexID int64) ([]catalog.ValueRow, error)
}

// RestoreFromCatalog repopulates the index by scanning live VectorValues for
// this Index, densifying/normalising as required, and bulk-adding; it then
// saves the index. If skipIfNonEmpty and the graph already holds points, it
// is a no-op.
func (m *Manager) RestoreFromCatalog(src RestoreSource, skipIfNonEmpty bool) error {
	m.mu.Lock()
	if m.st == created {
		m.mu.Unlock()
		if err := m.Build(); err != nil {
			return err
		}
		m.mu.Lock()
	}
	if skipIfNonEmpty && len(m.points) > 0 {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	rows, err := src.ListForIndex(m.indexID)
	if err != nil {
		return err
	}

	for _, row := range rows {
		vec, err := m.decodePayload(row.Payload)
		if err != nil {
			log.Warn("skipping malformed vector value during restore", "index_id", m.indexID, "unique_id", row.UniqueID, "error", err)
			continue
		}
		if err := m.Add(row.UniqueID, vec); err != nil {
			log.Warn("skipping vector that failed to insert during restore", "index_id", m.indexID, "unique_id", row.UniqueID, "error", err)
		}
	}

	return m.Save()
}

func (m *Manager) decodePayload(payload []byte) ([]float32, error) {
	switch m.valueKind {
	case catalog.Sparse:
		sv, err := DecodeSparse(payload, m.dimension)
		if err != nil {
			return nil, err
		}
		return Densify(sv, m.dimension), nil
	default:
		return DecodeDense(payload)
	}
}

// Save writes the index to its on-disk file. Failure leaves any prior file
// untouched (written to a temp path first, then renamed).
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}
	if err := writeSnapshot(f, m.points); err != nil {
		f.Close()
		os.Remove(tmp)
		return catalog.Wrap(catalog.Storage, err)
	}
	if err := f.Close(); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}
	return nil
}

// Load reads the index back from disk if the file exists; otherwise it
// falls back to RestoreFromCatalog and saves.
func (m *Manager) Load(src RestoreSource) error {
	if err := m.Build(); err != nil {
		return err
	}

	f, err := os.Open(m.path)
	if os.IsNotExist(err) {
		return m.RestoreFromCatalog(src, true)
	}
	if err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}
	defer f.Close()

	entries, err := readSnapshot(f)
	if err != nil {
		log.Warn("index file unreadable, rebuilding from catalog", "index_id", m.indexID, "error", err)
		return m.RestoreFromCatalog(src, true)
	}
	for _, e := range entries {
		if err := m.Add(e.uniqueID, e.vector); err != nil {
			log.Warn("skipping vector from index file", "index_id", m.indexID, "unique_id", e.uniqueID, "error", err)
		}
	}
	return nil
}

type snapshotEntry struct {
	uniqueID int64
	vector   []float32
}

// writeSnapshot is our own on-disk format for an index file: a count
// followed by (unique_id, dimension, f32 vector) tuples. Written ourselves
// rather than relying on the ANN library's own export format, since the
// catalog — not the graph — is this repo's source of truth for vector data;
// this file is a cache the catalog can always rebuild.
func writeSnapshot(w io.Writer, points map[int64][]float32) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(points))); err != nil {
		return err
	}
	for key, vec := range points {
		if err := binary.Write(bw, binary.LittleEndian, key); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(vec))); err != nil {
			return err
		}
		for _, f := range vec {
			if err := binary.Write(bw, binary.LittleEndian, f); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func readSnapshot(r io.Reader) ([]snapshotEntry, error) {
	br := bufio.NewReader(r)
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make([]snapshotEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var key int64
		var dim uint32
		if err := binary.Read(br, binary.LittleEndian, &key); err != nil {
			return nil, err
		}
		if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
			return nil, err
		}
		vec := make([]float32, dim)
		for j := range vec {
			if err := binary.Read(br, binary.LittleEndian, &vec[j]); err != nil {
				return nil, err
			}
		}
		out = append(out, snapshotEntry{uniqueID: key, vector: vec})
	}
	return out, nil
}

// Loaded reports whether the index is past the CREATED state.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st != created
}

// Len reports the number of points currently in the graph.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}
