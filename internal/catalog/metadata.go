package catalog

import "github.com/tinyvectordb/tinyvectordb/internal/database"

// MetadataManager is the transactional CRUD surface for VectorMetadata rows.
type MetadataManager struct {
	store *database.Store
}

// NewMetadataManager builds a MetadataManager over store.
func NewMetadataManager(store *database.Store) *MetadataManager {
	return &MetadataManager{store: store}
}

// ReplaceAll deletes every existing metadata row for vectorID and inserts
// kv, matching upsert's "replaces all values" semantics extended to
// metadata.
func (m *MetadataManager) ReplaceAll(vectorID int64, kv map[string]string) error {
	tx, err := m.store.Begin()
	if err != nil {
		return Wrap(Storage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vector_metadata WHERE vector_id = ?`, vectorID); err != nil {
		return Wrap(Storage, err)
	}
	for k, v := range kv {
		if _, err := tx.Exec(`INSERT INTO vector_metadata (vector_id, key, value) VALUES (?, ?, ?)`, vectorID, k, v); err != nil {
			return Wrap(Storage, err)
		}
	}
	return Wrap(Storage, tx.Commit())
}

// GetAll returns the key/value metadata for a Vector.
func (m *MetadataManager) GetAll(vectorID int64) (map[string]string, error) {
	rows, err := m.store.Query(`SELECT key, value FROM vector_metadata WHERE vector_id = ?`, vectorID)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, Wrap(Storage, err)
		}
		out[k] = v
	}
	return out, Wrap(Storage, rows.Err())
}

// GetAllForVectors batches metadata lookup for multiple vectors, used by
// the hybrid retrieval filter stage to avoid one query per result row.
func (m *MetadataManager) GetAllForVectors(vectorIDs []int64) (map[int64]map[string]string, error) {
	out := map[int64]map[string]string{}
	if len(vectorIDs) == 0 {
		return out, nil
	}

	placeholders := make([]any, len(vectorIDs))
	query := "SELECT vector_id, key, value FROM vector_metadata WHERE vector_id IN ("
	for i, id := range vectorIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ")"

	rows, err := m.store.Query(query, placeholders...)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var vectorID int64
		var k, v string
		if err := rows.Scan(&vectorID, &k, &v); err != nil {
			return nil, Wrap(Storage, err)
		}
		if out[vectorID] == nil {
			out[vectorID] = map[string]string{}
		}
		out[vectorID][k] = v
	}
	return out, Wrap(Storage, rows.Err())
}
