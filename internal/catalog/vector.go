package catalog

import (
	"database/sql"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// VectorManager is the transactional CRUD surface for Vector rows.
type VectorManager struct {
	store *database.Store
}

// NewVectorManager builds a VectorManager over store.
func NewVectorManager(store *database.Store) *VectorManager {
	return &VectorManager{store: store}
}

// Upsert inserts a new Vector or, if uniqueID already exists in versionID,
// touches its updated_utc and clears any soft-delete — the row identity for
// "replace all values" semantics. If uniqueID is nil, one is assigned as
// max(unique_id)+1 for the version.
func (m *VectorManager) Upsert(versionID int64, uniqueID *int64, kind ValueKind) (*Vector, error) {
	tx, err := m.store.Begin()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer tx.Rollback()

	v, err := m.upsertTx(tx, versionID, uniqueID, kind)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, Wrap(Storage, err)
	}
	return v, nil
}

func (m *VectorManager) upsertTx(tx *sql.Tx, versionID int64, uniqueID *int64, kind ValueKind) (*Vector, error) {
	now := clock.NowUTC()

	if uniqueID != nil {
		var existingID int64
		err := tx.QueryRow(`SELECT id FROM vectors WHERE version_id = ? AND unique_id = ?`, versionID, *uniqueID).Scan(&existingID)
		if err == nil {
			if _, err := tx.Exec(`UPDATE vectors SET kind = ?, deleted = 0, updated_utc = ? WHERE id = ?`, string(kind), now, existingID); err != nil {
				return nil, Wrap(Storage, err)
			}
			return &Vector{ID: existingID, VersionID: versionID, UniqueID: *uniqueID, Kind: kind, UpdatedUTC: now}, nil
		}
		if err != sql.ErrNoRows {
			return nil, Wrap(Storage, err)
		}
	}

	var newUniqueID int64
	if uniqueID != nil {
		newUniqueID = *uniqueID
	} else {
		if err := tx.QueryRow(`SELECT COALESCE(MAX(unique_id), 0) + 1 FROM vectors WHERE version_id = ?`, versionID).Scan(&newUniqueID); err != nil {
			return nil, Wrap(Storage, err)
		}
	}

	res, err := tx.Exec(
		`INSERT INTO vectors (version_id, unique_id, kind, deleted, created_utc, updated_utc) VALUES (?, ?, ?, 0, ?, ?)`,
		versionID, newUniqueID, string(kind), now, now,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	return &Vector{ID: id, VersionID: versionID, UniqueID: newUniqueID, Kind: kind, CreatedUTC: now, UpdatedUTC: now}, nil
}

func scanVector(row interface{ Scan(...any) error }) (*Vector, error) {
	var v Vector
	var kind string
	var deleted int
	if err := row.Scan(&v.ID, &v.VersionID, &v.UniqueID, &kind, &deleted, &v.CreatedUTC, &v.UpdatedUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "vector not found")
		}
		return nil, Wrap(Storage, err)
	}
	v.Kind = ValueKind(kind)
	v.Deleted = deleted != 0
	return &v, nil
}

const vectorColumns = `id, version_id, unique_id, kind, deleted, created_utc, updated_utc`

// GetByUniqueID fetches a non-deleted Vector by (version_id, unique_id).
func (m *VectorManager) GetByUniqueID(versionID, uniqueID int64) (*Vector, error) {
	row := m.store.QueryRow(`SELECT `+vectorColumns+` FROM vectors WHERE version_id = ? AND unique_id = ? AND deleted = 0`, versionID, uniqueID)
	return scanVector(row)
}

// GetByID fetches a Vector by internal id, regardless of deleted state.
func (m *VectorManager) GetByID(id int64) (*Vector, error) {
	row := m.store.QueryRow(`SELECT `+vectorColumns+` FROM vectors WHERE id = ?`, id)
	return scanVector(row)
}

// ListLive returns every non-deleted Vector in a Version, ordered by
// unique_id.
func (m *VectorManager) ListLive(versionID int64) ([]*Vector, error) {
	rows, err := m.store.Query(`SELECT `+vectorColumns+` FROM vectors WHERE version_id = ? AND deleted = 0 ORDER BY unique_id`, versionID)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Vector
	for rows.Next() {
		v, err := scanVector(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, Wrap(Storage, rows.Err())
}

// SoftDelete marks a Vector deleted; the search path excludes it but rows
// remain for audit/idempotence.
func (m *VectorManager) SoftDelete(id int64) error {
	now := clock.NowUTC()
	res, err := m.store.Exec(`UPDATE vectors SET deleted = 1, updated_utc = ? WHERE id = ?`, now, id)
	if err != nil {
		return Wrap(Storage, err)
	}
	return requireAffected(res)
}
