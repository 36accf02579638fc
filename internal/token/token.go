// Package token mints and validates the JWT bearer tokens access control
// runs on: HS256, carrying only `iat`/`exp` claims (the permission bits and
// expiry live in the catalog row, not the token payload itself — the JWT is
// a bearer secret, not a claims carrier).
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/clock"
)

// Minter mints, persists and validates Tokens.
type Minter struct {
	signingKey        []byte
	defaultExpireDays int
	tokens            *catalog.TokenManager
}

// NewMinter builds a Minter. signingKey is the configured JWT_TOKEN_KEY;
// defaultExpireDays applies when a caller requests expireDays == 0.
func NewMinter(signingKey string, defaultExpireDays int, tokens *catalog.TokenManager) *Minter {
	return &Minter{signingKey: []byte(signingKey), defaultExpireDays: defaultExpireDays, tokens: tokens}
}

// NewToken mints an HS256 JWT with iat/exp claims, persists it alongside
// perms and spaceID, and returns the resulting Token row.
func (m *Minter) NewToken(spaceID int64, perms catalog.Permissions, expireDays int) (*catalog.Token, error) {
	if expireDays <= 0 {
		expireDays = m.defaultExpireDays
	}
	now := time.Now().UTC()
	expireAt := now.AddDate(0, 0, expireDays)

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expireAt),
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString(m.signingKey)
	if err != nil {
		return nil, catalog.Wrap(catalog.Internal, err)
	}

	return m.tokens.Add(signed, spaceID, perms, expireAt.Unix())
}

// Validate parses and verifies tokenStr's signature and expiry, without
// consulting the catalog. Callers that need the stored permissions should
// follow with a catalog/Id-cache lookup by the same string.
func (m *Minter) Validate(tokenStr string) error {
	_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return catalog.Wrap(catalog.Unauthorized, err)
	}
	return nil
}

// PermissionResolver answers permission_for(resource, token): expired or
// invalid tokens, and lookup failures, resolve to Denied rather than
// surfacing an error — the "read-side permission failures never escalate"
// policy from §7.
type PermissionResolver struct {
	lookup func(tokenStr string) (*catalog.Token, error)
}

// NewPermissionResolver builds a resolver backed by lookup (typically
// idcache.Cache.Token).
func NewPermissionResolver(lookup func(tokenStr string) (*catalog.Token, error)) *PermissionResolver {
	return &PermissionResolver{lookup: lookup}
}

// Resource names one of the eight RBAC categories a Token governs.
type Resource string

const (
	System   Resource = "system"
	Space    Resource = "space"
	Version  Resource = "version"
	Vector   Resource = "vector"
	Search   Resource = "search"
	Snapshot Resource = "snapshot"
	Security Resource = "security"
	KeyValue Resource = "keyvalue"
)

// PermissionFor resolves tokenStr's permission level for resource, returning
// Denied (never an error) on any lookup failure, expiry, or unknown resource.
func (r *PermissionResolver) PermissionFor(resource Resource, tokenStr string) catalog.Permission {
	tok, err := r.lookup(tokenStr)
	if err != nil {
		return catalog.Denied
	}
	if clock.NowUTC() > tok.ExpireUTC {
		return catalog.Denied
	}
	switch resource {
	case System:
		return tok.Perms.System
	case Space:
		return tok.Perms.Space
	case Version:
		return tok.Perms.Version
	case Vector:
		return tok.Perms.Vector
	case Search:
		return tok.Perms.Search
	case Snapshot:
		return tok.Perms.Snapshot
	case Security:
		return tok.Perms.Security
	case KeyValue:
		return tok.Perms.KeyValue
	default:
		return catalog.Denied
	}
}
