package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

type noopInvalidator struct{ calls int }

func (n *noopInvalidator) InvalidateAll() { n.calls++ }

type noopLRU struct{ calls int }

func (n *noopLRU) Purge() { n.calls++ }

func newTestStore(t *testing.T, path string) (*database.Store, *catalog.Managers) {
	t.Helper()
	store, err := database.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, catalog.NewManagers(store)
}

func TestCreateThenRestoreRoundTrips(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	store, managers := newTestStore(t, srcPath)

	space, _, _, err := managers.CreateSpace("s1", "", map[string]catalog.IndexSpec{
		"dense": func() catalog.IndexSpec {
			spec := catalog.IndexSpec{ValueKind: catalog.Dense, Metric: catalog.L2, Dimension: 2}
			spec.ResolveDefaults(16, 100)
			return spec
		}(),
	}, "dense")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}

	idc := &noopInvalidator{}
	lru := &noopLRU{}
	staging := filepath.Join(dir, "staging")
	archiveFile := filepath.Join(dir, "snapshot.zip")

	archiver := New(store, managers, idc, lru, dir)
	if err := archiver.Create(`{"spaces":["s1"]}`, archiveFile, staging); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(archiveFile); err != nil {
		t.Fatalf("expected archive file to exist: %v", err)
	}

	snaps, err := managers.Snapshot.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 recorded snapshot, got %d", len(snaps))
	}

	// Restore into a fresh empty store and verify the space reappears.
	destPath := filepath.Join(dir, "dest.db")
	destStore, destManagers := newTestStore(t, destPath)
	restoreTarget := filepath.Join(dir, "restore")

	destArchiver := New(destStore, destManagers, idc, lru, dir)
	if err := destArchiver.Restore(archiveFile, restoreTarget); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if idc.calls == 0 || lru.calls == 0 {
		t.Errorf("expected idcache and indexcache to be invalidated on restore")
	}

	got, err := destManagers.Space.GetByName("s1")
	if err != nil {
		t.Fatalf("GetByName after restore: %v", err)
	}
	if got.Name != space.Name {
		t.Errorf("restored space name = %q, want %q", got.Name, space.Name)
	}
}

func TestFindBackupFileRequiresDBFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := findBackupFile(dir); catalog.KindOf(err) != catalog.BadRequest {
		t.Errorf("expected BadRequest when no backup file present, got %v", err)
	}
}
