package catalog

import (
	"database/sql"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// VersionManager is the transactional CRUD surface for Version rows.
type VersionManager struct {
	store *database.Store
}

// NewVersionManager builds a VersionManager over store.
func NewVersionManager(store *database.Store) *VersionManager {
	return &VersionManager{store: store}
}

// Add creates a Version under spaceID. unique_id is assigned as
// max(unique_id)+1 for the space. If isDefault is requested, or no default
// exists yet for the space, any prior default is cleared first so exactly
// one default remains — the "clear-all-defaults, then set-one" recipe.
func (m *VersionManager) Add(spaceID int64, name, description, tag string, isDefault bool) (*Version, error) {
	tx, err := m.store.Begin()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer tx.Rollback()

	v, err := m.addTx(tx, spaceID, name, description, tag, isDefault)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, Wrap(Storage, err)
	}
	return v, nil
}

func (m *VersionManager) addTx(tx *sql.Tx, spaceID int64, name, description, tag string, isDefault bool) (*Version, error) {
	var existingDefault int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM versions WHERE space_id = ? AND is_default = 1`, spaceID).Scan(&existingDefault); err != nil {
		return nil, Wrap(Storage, err)
	}
	if existingDefault == 0 {
		isDefault = true
	}

	var uniqueID int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(unique_id), 0) + 1 FROM versions WHERE space_id = ?`, spaceID).Scan(&uniqueID); err != nil {
		return nil, Wrap(Storage, err)
	}

	if isDefault {
		if _, err := tx.Exec(`UPDATE versions SET is_default = 0 WHERE space_id = ?`, spaceID); err != nil {
			return nil, Wrap(Storage, err)
		}
	}

	now := clock.NowUTC()
	res, err := tx.Exec(
		`INSERT INTO versions (space_id, unique_id, name, description, tag, is_default, created_utc, updated_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		spaceID, uniqueID, name, description, tag, boolToInt(isDefault), now, now,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}

	return &Version{
		ID: id, SpaceID: spaceID, UniqueID: uniqueID, Name: name, Description: description,
		Tag: tag, IsDefault: isDefault, CreatedUTC: now, UpdatedUTC: now,
	}, nil
}

func scanVersion(row interface{ Scan(...any) error }) (*Version, error) {
	var v Version
	var isDefault int
	if err := row.Scan(&v.ID, &v.SpaceID, &v.UniqueID, &v.Name, &v.Description, &v.Tag, &isDefault, &v.CreatedUTC, &v.UpdatedUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "version not found")
		}
		return nil, Wrap(Storage, err)
	}
	v.IsDefault = isDefault != 0
	return &v, nil
}

const versionColumns = `id, space_id, unique_id, name, description, tag, is_default, created_utc, updated_utc`

// GetByID fetches a Version by internal id.
func (m *VersionManager) GetByID(id int64) (*Version, error) {
	row := m.store.QueryRow(`SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
	return scanVersion(row)
}

// GetByUniqueID fetches a Version by (space_id, unique_id). uniqueID == 0 is
// the sentinel for "the default version of the space".
func (m *VersionManager) GetByUniqueID(spaceID, uniqueID int64) (*Version, error) {
	if uniqueID == 0 {
		return m.DefaultFor(spaceID)
	}
	row := m.store.QueryRow(`SELECT `+versionColumns+` FROM versions WHERE space_id = ? AND unique_id = ?`, spaceID, uniqueID)
	return scanVersion(row)
}

// DefaultFor returns the default Version of a Space.
func (m *VersionManager) DefaultFor(spaceID int64) (*Version, error) {
	row := m.store.QueryRow(`SELECT `+versionColumns+` FROM versions WHERE space_id = ? AND is_default = 1`, spaceID)
	return scanVersion(row)
}

// GetAll lists every Version in a Space.
func (m *VersionManager) GetAll(spaceID int64) ([]*Version, error) {
	rows, err := m.store.Query(`SELECT `+versionColumns+` FROM versions WHERE space_id = ? ORDER BY unique_id`, spaceID)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, Wrap(Storage, rows.Err())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
