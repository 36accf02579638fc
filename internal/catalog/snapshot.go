package catalog

import (
	"database/sql"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// SnapshotManager is the transactional CRUD surface for Snapshot rows. The
// archive itself (ZIP creation/restore) is package snapshot's concern; this
// manager only records that a snapshot happened.
type SnapshotManager struct {
	store *database.Store
}

// NewSnapshotManager builds a SnapshotManager over store.
func NewSnapshotManager(store *database.Store) *SnapshotManager {
	return &SnapshotManager{store: store}
}

// Add records a completed snapshot.
func (m *SnapshotManager) Add(requestJSON, fileName string) (*Snapshot, error) {
	now := clock.NowUTC()
	res, err := m.store.Exec(
		`INSERT INTO snapshots (request_json, file_name, created_utc) VALUES (?, ?, ?)`,
		requestJSON, fileName, now,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	return &Snapshot{ID: id, RequestJSON: requestJSON, FileName: fileName, CreatedUTC: now}, nil
}

// GetAll lists every recorded Snapshot, most recent first.
func (m *SnapshotManager) GetAll() ([]*Snapshot, error) {
	rows, err := m.store.Query(`SELECT id, request_json, file_name, created_utc FROM snapshots ORDER BY created_utc DESC`)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.RequestJSON, &s.FileName, &s.CreatedUTC); err != nil {
			return nil, Wrap(Storage, err)
		}
		out = append(out, &s)
	}
	return out, Wrap(Storage, rows.Err())
}

// GetByID fetches a Snapshot record by id.
func (m *SnapshotManager) GetByID(id int64) (*Snapshot, error) {
	row := m.store.QueryRow(`SELECT id, request_json, file_name, created_utc FROM snapshots WHERE id = ?`, id)
	var s Snapshot
	if err := row.Scan(&s.ID, &s.RequestJSON, &s.FileName, &s.CreatedUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "snapshot not found")
		}
		return nil, Wrap(Storage, err)
	}
	return &s, nil
}
