package catalog

import (
	"database/sql"
	"regexp"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

var spaceNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SpaceManager is the transactional CRUD surface for Space rows.
type SpaceManager struct {
	store *database.Store
}

// NewSpaceManager builds a SpaceManager over store.
func NewSpaceManager(store *database.Store) *SpaceManager {
	return &SpaceManager{store: store}
}

// ValidateName reports whether name matches the Space name regex.
func ValidateName(name string) bool {
	return name != "" && spaceNameRE.MatchString(name)
}

// Add inserts a bare Space row. Callers that need the full "Space +
// default Version + Index" lifecycle should use CreateSpace instead.
func (m *SpaceManager) Add(name, description string) (*Space, error) {
	if !ValidateName(name) {
		return nil, Newf(BadRequest, "invalid space name %q", name)
	}
	now := clock.NowUTC()
	res, err := m.store.Exec(
		`INSERT INTO spaces (name, description, created_utc, updated_utc) VALUES (?, ?, ?, ?)`,
		name, description, now, now,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	return &Space{ID: id, Name: name, Description: description, CreatedUTC: now, UpdatedUTC: now}, nil
}

func scanSpace(row interface{ Scan(...any) error }) (*Space, error) {
	var s Space
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedUTC, &s.UpdatedUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "space not found")
		}
		return nil, Wrap(Storage, err)
	}
	return &s, nil
}

// GetByID fetches a Space by internal id.
func (m *SpaceManager) GetByID(id int64) (*Space, error) {
	row := m.store.QueryRow(`SELECT id, name, description, created_utc, updated_utc FROM spaces WHERE id = ?`, id)
	return scanSpace(row)
}

// GetByName fetches a Space by its unique name.
func (m *SpaceManager) GetByName(name string) (*Space, error) {
	row := m.store.QueryRow(`SELECT id, name, description, created_utc, updated_utc FROM spaces WHERE name = ?`, name)
	return scanSpace(row)
}

// GetAll lists every Space.
func (m *SpaceManager) GetAll() ([]*Space, error) {
	rows, err := m.store.Query(`SELECT id, name, description, created_utc, updated_utc FROM spaces ORDER BY id`)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, Wrap(Storage, rows.Err())
}

// Update changes a Space's description (name is immutable post-creation in
// this implementation, matching the catalog's unique-name invariant).
func (m *SpaceManager) Update(id int64, description string) error {
	now := clock.NowUTC()
	res, err := m.store.Exec(`UPDATE spaces SET description = ?, updated_utc = ? WHERE id = ?`, description, now, id)
	if err != nil {
		return Wrap(Storage, err)
	}
	return requireAffected(res)
}

// Delete removes a Space and every descendant row inside one transaction.
// Each table is cleared by its own explicit DELETE, leaf-first: metadata,
// values, vectors, indexes, versions, then the Space row itself.
func (m *SpaceManager) Delete(id int64) error {
	tx, err := m.store.Begin()
	if err != nil {
		return Wrap(Storage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM vector_metadata WHERE vector_id IN (
			SELECT v.id FROM vectors v JOIN versions ver ON v.version_id = ver.id WHERE ver.space_id = ?
		)`, id); err != nil {
		return Wrap(Storage, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM vector_values WHERE vector_id IN (
			SELECT v.id FROM vectors v JOIN versions ver ON v.version_id = ver.id WHERE ver.space_id = ?
		)`, id); err != nil {
		return Wrap(Storage, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM vectors WHERE version_id IN (SELECT id FROM versions WHERE space_id = ?)
	`, id); err != nil {
		return Wrap(Storage, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM indexes WHERE version_id IN (SELECT id FROM versions WHERE space_id = ?)
	`, id); err != nil {
		return Wrap(Storage, err)
	}
	if _, err := tx.Exec(`DELETE FROM versions WHERE space_id = ?`, id); err != nil {
		return Wrap(Storage, err)
	}
	res, err := tx.Exec(`DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return Wrap(Storage, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return Wrap(Storage, tx.Commit())
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return Wrap(Storage, err)
	}
	if n == 0 {
		return Newf(NotFound, "no matching row")
	}
	return nil
}
