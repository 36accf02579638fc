package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration is one numbered DDL script from a migration directory.
type Migration struct {
	Number int
	Name   string
	SQL    string
}

var migrationFileRE = regexp.MustCompile(`^migration_(\d+)(?:\.sql)?$`)

// LoadMigrationDir reads reset.sql and every migration_<n>[.sql] file from
// dir, returning migrations sorted in ascending numeric order. dir must
// follow the contract documented in the external interfaces: a reset.sql
// plus migration_<n>[.sql] files, <n> a non-negative integer.
func LoadMigrationDir(dirFS fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(dirFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "reset.sql" {
			continue
		}
		m := migrationFileRE.FindStringSubmatch(strings.TrimSuffix(name, filepath.Ext(name)))
		if m == nil {
			m = migrationFileRE.FindStringSubmatch(name)
		}
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(dirFS, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Number: n, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Number < migrations[j].Number })
	return migrations, nil
}

// LoadResetSQL reads reset.sql from dir.
func LoadResetSQL(dirFS fs.FS, dir string) (string, error) {
	content, err := fs.ReadFile(dirFS, filepath.Join(dir, "reset.sql"))
	if err != nil {
		return "", fmt.Errorf("read reset.sql: %w", err)
	}
	return string(content), nil
}

// currentSchemaVersion returns 0 if the info table does not exist yet.
func currentSchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='info'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	err = db.QueryRow(`SELECT COALESCE(schema_version, 0) FROM info WHERE id = 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigrations runs every migration whose Number exceeds the current
// schema_version, in ascending order, each inside its own transaction
// (rolled back on failure), then records the new version in info.
func applyMigrations(db *sql.DB, migrations []Migration) error {
	current, err := currentSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("read current schema version: %w", err)
	}

	applied := current
	for _, m := range migrations {
		if m.Number <= current {
			log.Debug("skipping already-applied migration", "number", m.Number)
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Number, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Number, m.Name, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO info (id, schema_version, project_version) VALUES (1, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET schema_version = excluded.schema_version`,
			m.Number, ProjectVersion,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record schema version %d: %w", m.Number, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Number, err)
		}

		log.Info("applied migration", "number", m.Number, "name", m.Name)
		applied = m.Number
	}

	if applied > current {
		log.Info("schema migrated", "from", current, "to", applied)
	}
	return nil
}

// Reset drops and recreates the entire schema from reset.sql, leaving a
// guaranteed-clean database.
func (s *Store) Reset() error {
	sqlText, err := LoadResetSQL(embeddedMigrations, "migrations")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(sqlText) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("reset: exec %q: %w", firstLine(stmt), err)
		}
	}

	return tx.Commit()
}

// splitStatements is a small, good-enough splitter for the DDL scripts this
// package embeds: no stored procedures, no semicolons inside string
// literals containing semicolons.
func splitStatements(script string) []string {
	lines := strings.Split(script, "\n")
	var cleaned []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "--") || t == "" {
			continue
		}
		cleaned = append(cleaned, l)
	}
	return strings.Split(strings.Join(cleaned, "\n"), ";")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// externalMigrationDir resolves an operator-supplied migration directory on
// disk, falling back to the embedded default set shipped with this binary.
func externalMigrationDir(path string) (fs.FS, string, bool) {
	if path == "" {
		return nil, "", false
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return os.DirFS(path), ".", true
	}
	return nil, "", false
}
