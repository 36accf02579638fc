// Package database is the catalog store: a SQLite-backed, single-writer
// relational handle with directory-driven migrations, matching the
// Catalog store contract (open/create, DDL, prepared statements, tx,
// versioned migrations, reset-to-latest).
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tinyvectordb/tinyvectordb/internal/logging"
)

var log = logging.GetLogger("database")

// Store is a connection to the catalog's SQLite database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens a database connection at path ("" or ":memory:" for an
// in-process, non-persistent database) and ensures the catalog schema is at
// SchemaVersion, applying any outstanding migration_<n>[.sql] files.
func Open(path string) (*Store, error) {
	log.Info("opening catalog store", "path", path)

	inMemory := path == "" || path == ":memory:"
	if !inMemory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("failed to create database directory", "error", err, "dir", dir)
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if inMemory {
		dsn = "file::memory:?cache=shared&_foreign_keys=on"
	} else {
		dsn = fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; serialise through a single
	// connection so WAL-mode concurrent readers still see one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		log.Error("failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db, path: path}

	if err := store.migrate(""); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("catalog store ready", "path", path)
	return store, nil
}

// migrate applies outstanding migrations from an operator-supplied
// directory (externalDir) if present, otherwise from the embedded default
// migration set.
func (s *Store) migrate(externalDir string) error {
	dirFS, dir, ok := externalMigrationDir(externalDir)
	if !ok {
		dirFS, dir = embeddedMigrations, "migrations"
	}

	migrations, err := LoadMigrationDir(dirFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return applyMigrations(s.db, migrations)
}

// Close closes the database connection.
func (s *Store) Close() error {
	log.Info("closing catalog store")
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
			return err
		}
	}
	return nil
}

// DB returns the underlying sql.DB for components that need direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path ("" or ":memory:" for in-process).
func (s *Store) Path() string {
	return s.path
}

// Exec executes a SQL statement.
func (s *Store) Exec(query string, args ...interface{}) (sql.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Exec(query, args...)
}

// Query executes a SQL query and returns rows.
func (s *Store) Query(query string, args ...interface{}) (*sql.Rows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Query(query, args...)
}

// QueryRow executes a SQL query and returns a single row.
func (s *Store) QueryRow(query string, args ...interface{}) *sql.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.QueryRow(query, args...)
}

// Begin starts a new transaction. Callers are responsible for Commit or
// Rollback; every domain-manager mutation that touches more than one table
// goes through this so default-flag maintenance stays atomic.
func (s *Store) Begin() (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Begin()
}

// SchemaVersionOf returns the schema version currently recorded in info.
func (s *Store) SchemaVersionOf() (int, error) {
	return currentSchemaVersion(s.db)
}

// TableExists checks if a table exists in the database.
func (s *Store) TableExists(name string) (bool, error) {
	var count int
	err := s.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name=?
	`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountRows returns the number of rows in table. table is never
// caller-supplied across a trust boundary in this codebase (callers pass
// only the fixed catalog table names), so string formatting here is safe.
func (s *Store) CountRows(table string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// Vacuum runs VACUUM to reclaim space after large deletes (space drop,
// snapshot restore).
func (s *Store) Vacuum() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("VACUUM")
	return err
}

// Checkpoint forces a WAL checkpoint, used before Snapshot.create copies the
// database file so the copy reflects all committed writes.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Stats summarises catalog occupancy, used by operator tooling.
type Stats struct {
	Path          string
	SchemaVersion int
	TableCount    int
	SpaceCount    int
	VersionCount  int
	IndexCount    int
	VectorCount   int
	TokenCount    int
	FileSizeBytes int64
}

// GetStats returns database statistics.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{Path: s.path}

	if version, err := s.SchemaVersionOf(); err == nil {
		stats.SchemaVersion = version
	}

	s.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&stats.TableCount)
	s.QueryRow("SELECT COUNT(*) FROM spaces").Scan(&stats.SpaceCount)
	s.QueryRow("SELECT COUNT(*) FROM versions").Scan(&stats.VersionCount)
	s.QueryRow("SELECT COUNT(*) FROM indexes").Scan(&stats.IndexCount)
	s.QueryRow("SELECT COUNT(*) FROM vectors WHERE deleted = 0").Scan(&stats.VectorCount)
	s.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&stats.TokenCount)

	if !s.InMemory() {
		if info, err := os.Stat(s.path); err == nil {
			stats.FileSizeBytes = info.Size()
		}
	}

	return stats, nil
}

// InMemory reports whether this store backs onto a non-persistent database.
func (s *Store) InMemory() bool {
	return s.path == "" || s.path == ":memory:"
}
