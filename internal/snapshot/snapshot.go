// Package snapshot backs up and restores the whole database: a ZIP archive
// containing a copy of the catalog store's file (taken through its native
// backup API) and a manifest.json. The persisted ANN index files are not
// included in the archive.
package snapshot

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
	"github.com/tinyvectordb/tinyvectordb/internal/logging"
)

var log = logging.GetLogger("snapshot")

// Manifest is the informational root-level manifest.json, read for display
// purposes only — the backup_*.db file is authoritative on restore.
type Manifest struct {
	SchemaVersion int    `json:"schema_version"`
	CreatedUTC    int64  `json:"created_utc"`
	Selection     string `json:"selection"`
}

// Invalidator is implemented by the Id-cache; Restore drops it, together
// with the Index LRU, before restoring.
type Invalidator interface {
	InvalidateAll()
}

type lruInvalidator interface {
	Purge()
}

// Archiver creates and restores whole-database snapshots.
type Archiver struct {
	store      *database.Store
	managers   *catalog.Managers
	idcache    Invalidator
	indexcache lruInvalidator
	dataPath   string
}

// New builds an Archiver over store, recording snapshots through managers
// and invalidating idcache/indexcache around restore.
func New(store *database.Store, managers *catalog.Managers, idcache Invalidator, indexcache lruInvalidator, dataPath string) *Archiver {
	return &Archiver{store: store, managers: managers, idcache: idcache, indexcache: indexcache, dataPath: dataPath}
}

// Create backs up the catalog store to a backup_*.db file in stagingDir,
// writes manifest.json there, and bundles everything under stagingDir into
// a ZIP at file. Records a Snapshot row. Loaded indexes are not saved first,
// and no ANN index files are added to the archive.
func (a *Archiver) Create(selectionJSON, file, stagingDir string) error {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	backupName := fmt.Sprintf("backup_%s.db", clock.RandomSuffix())
	backupPath := filepath.Join(stagingDir, backupName)
	if err := a.store.BackupTo(backupPath); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	now := clock.NowUTC()
	manifest := Manifest{SchemaVersion: database.SchemaVersion, CreatedUTC: now, Selection: selectionJSON}
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return catalog.Wrap(catalog.Internal, err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	if err := zipDir(stagingDir, file); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	_, err = a.managers.Snapshot.Add(selectionJSON, filepath.Base(file))
	return err
}

// Restore invalidates the Id-cache and Index LRU, unzips zipPath into
// targetDir, locates a backup_*.db file, and copies it into the live store
// via the catalog store's native backup API.
func (a *Archiver) Restore(zipPath, targetDir string) error {
	a.idcache.InvalidateAll()
	a.indexcache.Purge()

	if err := unzip(zipPath, targetDir); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	backupFile, err := findBackupFile(targetDir)
	if err != nil {
		return err
	}

	if err := a.store.RestoreFrom(backupFile); err != nil {
		return catalog.Wrap(catalog.Storage, err)
	}

	log.Info("snapshot restored", "source", zipPath, "backup_file", backupFile)
	return nil
}

func findBackupFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", catalog.Wrap(catalog.Storage, err)
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".db" {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", catalog.Newf(catalog.BadRequest, "no backup_*.db file found under %s", dir)
}

func zipDir(srcDir, destFile string) error {
	f, err := os.Create(destFile)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		r, err := os.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(w, r)
		return err
	})
}

func unzip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		path := filepath.Join(destDir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(path)
		if err != nil {
			rc.Close()
			return err
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}
