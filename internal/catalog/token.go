package catalog

import (
	"database/sql"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// TokenManager is the transactional CRUD surface for Token rows. Minting
// the JWT string itself is package token's concern; this manager persists
// the resulting string alongside its permission bits and expiry.
type TokenManager struct {
	store *database.Store
}

// NewTokenManager builds a TokenManager over store.
func NewTokenManager(store *database.Store) *TokenManager {
	return &TokenManager{store: store}
}

// Add persists a Token. tokenStr is the already-minted JWT (or a
// caller-supplied string, per the "only generate if empty" contract
// enforced one layer up in package token).
func (m *TokenManager) Add(tokenStr string, spaceID int64, perms Permissions, expireUTC int64) (*Token, error) {
	res, err := m.store.Exec(
		`INSERT INTO tokens (token, space_id, system_permission, space_permission, version_permission, vector_permission, search_permission, snapshot_permission, security_permission, keyvalue_permission, expire_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tokenStr, spaceID,
		int(perms.System), int(perms.Space), int(perms.Version), int(perms.Vector),
		int(perms.Search), int(perms.Snapshot), int(perms.Security), int(perms.KeyValue),
		expireUTC,
	)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	return &Token{ID: id, TokenStr: tokenStr, SpaceID: spaceID, Perms: perms, ExpireUTC: expireUTC}, nil
}

func scanToken(row interface{ Scan(...any) error }) (*Token, error) {
	var t Token
	var system, space, version, vector, search, snapshot, security, keyvalue int
	if err := row.Scan(&t.ID, &t.TokenStr, &t.SpaceID, &system, &space, &version, &vector, &search, &snapshot, &security, &keyvalue, &t.ExpireUTC); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "token not found")
		}
		return nil, Wrap(Storage, err)
	}
	t.Perms = Permissions{
		System: Permission(system), Space: Permission(space), Version: Permission(version),
		Vector: Permission(vector), Search: Permission(search), Snapshot: Permission(snapshot),
		Security: Permission(security), KeyValue: Permission(keyvalue),
	}
	return &t, nil
}

const tokenColumns = `id, token, space_id, system_permission, space_permission, version_permission, vector_permission, search_permission, snapshot_permission, security_permission, keyvalue_permission, expire_utc`

// GetByToken fetches a non-expired Token by its JWT string.
func (m *TokenManager) GetByToken(tokenStr string) (*Token, error) {
	row := m.store.QueryRow(`SELECT `+tokenColumns+` FROM tokens WHERE token = ? AND expire_utc > ?`, tokenStr, clock.NowUTC())
	return scanToken(row)
}

// GetByID fetches a Token by internal id, regardless of expiry.
func (m *TokenManager) GetByID(id int64) (*Token, error) {
	row := m.store.QueryRow(`SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, id)
	return scanToken(row)
}

// GetAll returns every non-expired Token.
func (m *TokenManager) GetAll() ([]*Token, error) {
	rows, err := m.store.Query(`SELECT `+tokenColumns+` FROM tokens WHERE expire_utc > ?`, clock.NowUTC())
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	var out []*Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, Wrap(Storage, rows.Err())
}

// Update rewrites a Token's permissions and expiry.
func (m *TokenManager) Update(id int64, perms Permissions, expireUTC int64) error {
	res, err := m.store.Exec(
		`UPDATE tokens SET system_permission = ?, space_permission = ?, version_permission = ?, vector_permission = ?,
		 search_permission = ?, snapshot_permission = ?, security_permission = ?, keyvalue_permission = ?, expire_utc = ?
		 WHERE id = ?`,
		int(perms.System), int(perms.Space), int(perms.Version), int(perms.Vector),
		int(perms.Search), int(perms.Snapshot), int(perms.Security), int(perms.KeyValue),
		expireUTC, id,
	)
	if err != nil {
		return Wrap(Storage, err)
	}
	return requireAffected(res)
}

// DeleteByToken removes a Token row by its JWT string.
func (m *TokenManager) DeleteByToken(tokenStr string) error {
	res, err := m.store.Exec(`DELETE FROM tokens WHERE token = ?`, tokenStr)
	if err != nil {
		return Wrap(Storage, err)
	}
	return requireAffected(res)
}

// DeleteAllExpired purges every Token past its expiry, a maintenance
// operation the embedding host may run periodically.
func (m *TokenManager) DeleteAllExpired() (int64, error) {
	res, err := m.store.Exec(`DELETE FROM tokens WHERE expire_utc < ?`, clock.NowUTC())
	if err != nil {
		return 0, Wrap(Storage, err)
	}
	n, err := res.RowsAffected()
	return n, Wrap(Storage, err)
}
