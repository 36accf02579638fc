package catalog

import (
	"database/sql"
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// IndexManager is the transactional CRUD surface for Index rows (the
// catalog descriptor; the in-memory ANN structure lives in package ann).
type IndexManager struct {
	store *database.Store
}

// NewIndexManager builds an IndexManager over store.
func NewIndexManager(store *database.Store) *IndexManager {
	return &IndexManager{store: store}
}

// IndexSpec is the caller-supplied configuration for a new Index, before
// defaults (hnsw_cfg.EfSearch defaulting to EfConstruction, etc.) are
// resolved.
type IndexSpec struct {
	Name       string
	ValueKind  ValueKind
	Metric     Metric
	Dimension  int
	HNSWConfig HNSWConfig
	QuantCfg   QuantConfig
	IsDefault  bool
}

// ResolveDefaults fills in HNSW/quant defaults not set by the caller.
func (s *IndexSpec) ResolveDefaults(defaultM, defaultEfConstruct int) {
	if s.HNSWConfig.M == 0 {
		s.HNSWConfig.M = defaultM
	}
	if s.HNSWConfig.EfConstruction == 0 {
		s.HNSWConfig.EfConstruction = defaultEfConstruct
	}
	if s.HNSWConfig.EfSearch == 0 {
		// efSearch defaults to efConstruction when not independently
		// configured.
		s.HNSWConfig.EfSearch = s.HNSWConfig.EfConstruction
	}
	if s.QuantCfg.Type == "" {
		s.QuantCfg.Type = QuantNone
	}
}

// Add persists a new Index under versionID. Default-flag maintenance
// follows the same clear-then-set recipe as Version.add.
func (m *IndexManager) Add(versionID int64, spec IndexSpec) (*Index, error) {
	tx, err := m.store.Begin()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer tx.Rollback()

	idx, err := m.addTx(tx, versionID, spec)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, Wrap(Storage, err)
	}
	return idx, nil
}

func (m *IndexManager) addTx(tx *sql.Tx, versionID int64, spec IndexSpec) (*Index, error) {
	var existingDefault int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM indexes WHERE version_id = ? AND is_default = 1`, versionID).Scan(&existingDefault); err != nil {
		return nil, Wrap(Storage, err)
	}
	isDefault := spec.IsDefault || existingDefault == 0

	if isDefault {
		if _, err := tx.Exec(`UPDATE indexes SET is_default = 0 WHERE version_id = ?`, versionID); err != nil {
			return nil, Wrap(Storage, err)
		}
	}

	hnswJSON, err := json.Marshal(spec.HNSWConfig)
	if err != nil {
		return nil, Wrap(Internal, err)
	}
	quantJSON, err := json.Marshal(spec.QuantCfg)
	if err != nil {
		return nil, Wrap(Internal, err)
	}

	now := clock.NowUTC()
	res, err := tx.Exec(
		`INSERT INTO indexes (version_id, value_kind, name, metric, dimension, hnsw_cfg, quant_cfg, is_default, created_utc, updated_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		versionID, string(spec.ValueKind), spec.Name, string(spec.Metric), spec.Dimension,
		string(hnswJSON), string(quantJSON), boolToInt(isDefault), now, now,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}

	return &Index{
		ID: id, VersionID: versionID, ValueKind: spec.ValueKind, Name: spec.Name, Metric: spec.Metric,
		Dimension: spec.Dimension, HNSWConfig: spec.HNSWConfig, QuantCfg: spec.QuantCfg,
		IsDefault: isDefault, CreatedUTC: now, UpdatedUTC: now,
	}, nil
}

func scanIndex(row interface{ Scan(...any) error }) (*Index, error) {
	var idx Index
	var valueKind, metric, hnswJSON, quantJSON string
	var isDefault int
	if err := row.Scan(&idx.ID, &idx.VersionID, &valueKind, &idx.Name, &metric, &idx.Dimension,
		&hnswJSON, &quantJSON, &isDefault, &idx.CreatedUTC, &idx.UpdatedUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "index not found")
		}
		return nil, Wrap(Storage, err)
	}
	idx.ValueKind = ValueKind(valueKind)
	idx.Metric = Metric(metric)
	idx.IsDefault = isDefault != 0
	if err := json.Unmarshal([]byte(hnswJSON), &idx.HNSWConfig); err != nil {
		return nil, Wrap(Internal, err)
	}
	if err := json.Unmarshal([]byte(quantJSON), &idx.QuantCfg); err != nil {
		return nil, Wrap(Internal, err)
	}
	return &idx, nil
}

const indexColumns = `id, version_id, value_kind, name, metric, dimension, hnsw_cfg, quant_cfg, is_default, created_utc, updated_utc`

// GetByID fetches an Index by internal id.
func (m *IndexManager) GetByID(id int64) (*Index, error) {
	row := m.store.QueryRow(`SELECT `+indexColumns+` FROM indexes WHERE id = ?`, id)
	return scanIndex(row)
}

// GetByName fetches an Index by (version_id, name).
func (m *IndexManager) GetByName(versionID int64, name string) (*Index, error) {
	row := m.store.QueryRow(`SELECT `+indexColumns+` FROM indexes WHERE version_id = ? AND name = ?`, versionID, name)
	return scanIndex(row)
}

// DefaultFor returns the default Index of a Version matching valueKind, or
// NotFound if no default Index of that kind exists.
func (m *IndexManager) DefaultFor(versionID int64, valueKind ValueKind) (*Index, error) {
	row := m.store.QueryRow(
		`SELECT `+indexColumns+` FROM indexes WHERE version_id = ? AND is_default = 1 AND value_kind = ?`,
		versionID, string(valueKind),
	)
	return scanIndex(row)
}

// GetAll lists every Index in a Version.
func (m *IndexManager) GetAll(versionID int64) ([]*Index, error) {
	rows, err := m.store.Query(`SELECT `+indexColumns+` FROM indexes WHERE version_id = ? ORDER BY id`, versionID)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Index
	for rows.Next() {
		idx, err := scanIndex(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, Wrap(Storage, rows.Err())
}

// Delete removes an Index. If it was the default, the most-recently-created
// remaining Index in the same Version (by created_utc desc) is promoted to
// default, preserving "at most one default per Version".
func (m *IndexManager) Delete(id int64) error {
	tx, err := m.store.Begin()
	if err != nil {
		return Wrap(Storage, err)
	}
	defer tx.Rollback()

	var versionID int64
	var wasDefault int
	if err := tx.QueryRow(`SELECT version_id, is_default FROM indexes WHERE id = ?`, id).Scan(&versionID, &wasDefault); err != nil {
		if err == sql.ErrNoRows {
			return Newf(NotFound, "index not found")
		}
		return Wrap(Storage, err)
	}

	if _, err := tx.Exec(`DELETE FROM indexes WHERE id = ?`, id); err != nil {
		return Wrap(Storage, err)
	}

	if wasDefault != 0 {
		var promoteID int64
		err := tx.QueryRow(
			`SELECT id FROM indexes WHERE version_id = ? ORDER BY created_utc DESC, id DESC LIMIT 1`,
			versionID,
		).Scan(&promoteID)
		if err == nil {
			if _, err := tx.Exec(`UPDATE indexes SET is_default = 1 WHERE id = ?`, promoteID); err != nil {
				return Wrap(Storage, err)
			}
		} else if err != sql.ErrNoRows {
			return Wrap(Storage, err)
		}
	}

	return Wrap(Storage, tx.Commit())
}
