package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/token"
)

// TokenHandle is the Token service's manager handle.
type TokenHandle struct {
	minter *token.Minter
}

// NewTokenHandle builds a TokenHandle over minter.
func NewTokenHandle(minter *token.Minter) *TokenHandle {
	return &TokenHandle{minter: minter}
}

type permissionsRequest struct {
	System   string `json:"system"`
	Space    string `json:"space"`
	Version  string `json:"version"`
	Vector   string `json:"vector"`
	Search   string `json:"search"`
	Snapshot string `json:"snapshot"`
	Security string `json:"security"`
	KeyValue string `json:"keyvalue"`
}

func parsePermission(s string) catalog.Permission {
	switch s {
	case "read_only":
		return catalog.ReadOnly
	case "read_write":
		return catalog.ReadWrite
	default:
		return catalog.Denied
	}
}

func (p permissionsRequest) toPermissions() catalog.Permissions {
	return catalog.Permissions{
		System:   parsePermission(p.System),
		Space:    parsePermission(p.Space),
		Version:  parsePermission(p.Version),
		Vector:   parsePermission(p.Vector),
		Search:   parsePermission(p.Search),
		Snapshot: parsePermission(p.Snapshot),
		Security: parsePermission(p.Security),
		KeyValue: parsePermission(p.KeyValue),
	}
}

type createTokenRequest struct {
	SpaceID     int64              `json:"space_id"`
	Permissions permissionsRequest `json:"permissions"`
	ExpireDays  int                `json:"expire_days,omitempty"`
}

// Create handles the §6 "create token" ABI call.
func (h *TokenHandle) Create(req []byte) ([]byte, error) {
	var in createTokenRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	tok, err := h.minter.NewToken(in.SpaceID, in.Permissions.toPermissions(), in.ExpireDays)
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]any{
		"token":      tok.TokenStr,
		"space_id":   tok.SpaceID,
		"expire_utc": tok.ExpireUTC,
	})
}

// Validate handles the §6 "validate token" ABI call: checks signature and
// expiry only, without consulting stored permissions.
func (h *TokenHandle) Validate(req []byte) ([]byte, error) {
	var in struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	if err := h.minter.Validate(in.Token); err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]bool{"valid": true})
}
