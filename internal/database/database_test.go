package database

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	for _, table := range []string{"spaces", "versions", "indexes", "vectors", "vector_values", "vector_metadata", "bm25_docs", "snapshots", "tokens", "info"} {
		exists, err := store.TableExists(table)
		if err != nil {
			t.Fatalf("TableExists(%s): %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist after Open", table)
		}
	}

	version, err := store.SchemaVersionOf()
	if err != nil {
		t.Fatalf("SchemaVersionOf: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	store1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := store1.Exec(`INSERT INTO spaces (name, description, created_utc, updated_utc) VALUES ('s', '', 1, 1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	store1.Close()

	store2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer store2.Close()

	count, err := store2.CountRows("spaces")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected reopening to preserve data, got %d spaces", count)
	}
}

func TestReset(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Exec(`INSERT INTO spaces (name, description, created_utc, updated_utc) VALUES ('s', '', 1, 1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	count, err := store.CountRows("spaces")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected Reset to clear spaces, got %d", count)
	}
}

func TestInMemory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer store.Close()

	if !store.InMemory() {
		t.Error("expected InMemory() to be true")
	}
}
