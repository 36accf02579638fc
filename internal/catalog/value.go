package catalog

import (
	"database/sql"

	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// ValueManager is the transactional CRUD surface for VectorValue rows: the
// kind-dependent serialised payloads backing ANN insertion.
type ValueManager struct {
	store *database.Store
}

// NewValueManager builds a ValueManager over store.
func NewValueManager(store *database.Store) *ValueManager {
	return &ValueManager{store: store}
}

// Replace upserts the payload for (vectorID, indexID), matching the "upsert
// replaces all values for the matching vector" invariant at the per-index
// granularity a single Index's VectorValue row represents.
func (m *ValueManager) Replace(vectorID, indexID int64, kind ValueKind, payload []byte) error {
	_, err := m.store.Exec(
		`INSERT INTO vector_values (vector_id, index_id, kind, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(vector_id, index_id) DO UPDATE SET kind = excluded.kind, payload = excluded.payload`,
		vectorID, indexID, string(kind), payload,
	)
	return Wrap(Storage, err)
}

// Get fetches the VectorValue for (vectorID, indexID).
func (m *ValueManager) Get(vectorID, indexID int64) (*VectorValue, error) {
	row := m.store.QueryRow(
		`SELECT id, vector_id, index_id, kind, payload FROM vector_values WHERE vector_id = ? AND index_id = ?`,
		vectorID, indexID,
	)
	var v VectorValue
	var kind string
	if err := row.Scan(&v.ID, &v.VectorID, &v.IndexID, &kind, &v.Payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "vector value not found")
		}
		return nil, Wrap(Storage, err)
	}
	v.Kind = ValueKind(kind)
	return &v, nil
}

// ValueRow is one (unique_id, payload) pair used to repopulate an ANN
// index from the catalog.
type ValueRow struct {
	UniqueID int64
	Payload  []byte
}

// ListForIndex returns every live Vector's payload for indexID, joined
// against non-deleted vectors, ordered by unique_id — the source query for
// restore_from_catalog.
func (m *ValueManager) ListForIndex(indexID int64) ([]ValueRow, error) {
	rows, err := m.store.Query(`
		SELECT v.unique_id, vv.payload
		FROM vector_values vv
		JOIN vectors v ON v.id = vv.vector_id
		WHERE vv.index_id = ? AND v.deleted = 0
		ORDER BY v.unique_id
	`, indexID)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []ValueRow
	for rows.Next() {
		var r ValueRow
		if err := rows.Scan(&r.UniqueID, &r.Payload); err != nil {
			return nil, Wrap(Storage, err)
		}
		out = append(out, r)
	}
	return out, Wrap(Storage, rows.Err())
}
