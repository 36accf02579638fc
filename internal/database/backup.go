package database

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// BackupTo copies this store's database into a fresh file at destPath using
// SQLite's native online backup API — an exact, consistency-preserving copy
// even while the source is in use, the mechanism Snapshot.create relies on.
func (s *Store) BackupTo(destPath string) error {
	if err := s.Checkpoint(); err != nil {
		return fmt.Errorf("checkpoint before backup: %w", err)
	}

	destDB, err := sql.Open("sqlite3", destPath)
	if err != nil {
		return fmt.Errorf("open backup destination: %w", err)
	}
	defer destDB.Close()

	return s.runBackup(destDB, "main", "main")
}

// RestoreFrom copies srcPath's database into this store's live database,
// atomically replacing its contents — the authoritative step of
// Snapshot.restore, run after the Id-cache and Index LRU have been
// invalidated.
func (s *Store) RestoreFrom(srcPath string) error {
	srcDB, err := sql.Open("sqlite3", srcPath)
	if err != nil {
		return fmt.Errorf("open restore source: %w", err)
	}
	defer srcDB.Close()

	ctx := context.Background()
	srcConn, err := srcDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire restore source connection: %w", err)
	}
	defer srcConn.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	destConn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire destination connection: %w", err)
	}
	defer destConn.Close()

	return destConn.Raw(func(destDriverConn any) error {
		destSQLiteConn, ok := destDriverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("destination connection is not a sqlite3 connection")
		}
		return srcConn.Raw(func(srcDriverConn any) error {
			srcSQLiteConn, ok := srcDriverConn.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("source connection is not a sqlite3 connection")
			}
			backup, err := destSQLiteConn.Backup("main", srcSQLiteConn, "main")
			if err != nil {
				return fmt.Errorf("start backup: %w", err)
			}
			defer backup.Close()
			if _, err := backup.Step(-1); err != nil {
				return fmt.Errorf("backup step: %w", err)
			}
			return backup.Finish()
		})
	})
}

// runBackup is BackupTo's shared implementation, copying the live store
// (src) into destDB (dest).
func (s *Store) runBackup(destDB *sql.DB, destName, srcName string) error {
	ctx := context.Background()

	s.mu.RLock()
	defer s.mu.RUnlock()

	srcConn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire source connection: %w", err)
	}
	defer srcConn.Close()

	destConn, err := destDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire destination connection: %w", err)
	}
	defer destConn.Close()

	return destConn.Raw(func(destDriverConn any) error {
		destSQLiteConn, ok := destDriverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("destination connection is not a sqlite3 connection")
		}
		return srcConn.Raw(func(srcDriverConn any) error {
			srcSQLiteConn, ok := srcDriverConn.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("source connection is not a sqlite3 connection")
			}
			backup, err := destSQLiteConn.Backup(destName, srcSQLiteConn, srcName)
			if err != nil {
				return fmt.Errorf("start backup: %w", err)
			}
			defer backup.Close()
			if _, err := backup.Step(-1); err != nil {
				return fmt.Errorf("backup step: %w", err)
			}
			return backup.Finish()
		})
	})
}
