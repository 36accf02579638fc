package runtime

import (
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/config"
)

func TestOpenAssemblesEveryComponent(t *testing.T) {
	cfg := config.Default()
	cfg.DBName = ":memory:"
	cfg.DataPath = t.TempDir()

	rt, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rt.Close()

	if rt.Store == nil || rt.Managers == nil || rt.IdCache == nil ||
		rt.IndexCache == nil || rt.Hybrid == nil || rt.Minter == nil || rt.Snapshots == nil {
		t.Fatalf("Open left a component nil: %+v", rt)
	}
}

func TestCloseIsSafeAfterOpen(t *testing.T) {
	cfg := config.Default()
	cfg.DBName = ":memory:"
	cfg.DataPath = t.TempDir()

	rt, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
