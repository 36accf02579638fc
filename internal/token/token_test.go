package token

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

func TestNewTokenRoundTripsThroughCatalog(t *testing.T) {
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	managers := catalog.NewManagers(store)

	minter := NewMinter("test-secret", 30, managers.Token)
	perms := catalog.Permissions{Vector: catalog.ReadWrite, Search: catalog.ReadOnly}

	tok, err := minter.NewToken(1, perms, 0)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if err := minter.Validate(tok.TokenStr); err != nil {
		t.Errorf("Validate: %v", err)
	}

	got, err := managers.Token.GetByToken(tok.TokenStr)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.Perms.Vector != catalog.ReadWrite {
		t.Errorf("expected ReadWrite vector permission, got %v", got.Perms.Vector)
	}
}

func TestPermissionForDeniesOnLookupFailure(t *testing.T) {
	resolver := NewPermissionResolver(func(tokenStr string) (*catalog.Token, error) {
		return nil, catalog.Newf(catalog.NotFound, "no such token")
	})
	if got := resolver.PermissionFor(Vector, "bogus"); got != catalog.Denied {
		t.Errorf("expected Denied on lookup failure, got %v", got)
	}
}

func TestPermissionForDeniesExpired(t *testing.T) {
	resolver := NewPermissionResolver(func(tokenStr string) (*catalog.Token, error) {
		return &catalog.Token{ExpireUTC: 1, Perms: catalog.Permissions{Vector: catalog.ReadWrite}}, nil
	})
	if got := resolver.PermissionFor(Vector, "expired"); got != catalog.Denied {
		t.Errorf("expected Denied for an expired token, got %v", got)
	}
}
