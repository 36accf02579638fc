// Package runtime assembles the embedded vector database's components into
// one value an embedding host constructs exactly once: the catalog store,
// its managers, the process-wide lookup caches, the token minter, and the
// snapshot archiver. Every other package (facade, api, cmd) is handed a
// *Runtime rather than reaching for package-level singletons.
package runtime

import (
	"fmt"
	"path/filepath"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
	"github.com/tinyvectordb/tinyvectordb/internal/config"
	"github.com/tinyvectordb/tinyvectordb/internal/database"
	"github.com/tinyvectordb/tinyvectordb/internal/hybrid"
	"github.com/tinyvectordb/tinyvectordb/internal/idcache"
	"github.com/tinyvectordb/tinyvectordb/internal/indexcache"
	"github.com/tinyvectordb/tinyvectordb/internal/logging"
	"github.com/tinyvectordb/tinyvectordb/internal/snapshot"
	"github.com/tinyvectordb/tinyvectordb/internal/token"
)

var log = logging.GetLogger("runtime")

// Runtime holds every live component the embedded database needs, wired
// together once at process start.
type Runtime struct {
	Config     *config.Config
	Store      *database.Store
	Managers   *catalog.Managers
	IdCache    *idcache.Cache
	IndexCache *indexcache.Cache
	Hybrid     *hybrid.Engine
	Minter     *token.Minter
	Resolver   *token.PermissionResolver
	Snapshots  *snapshot.Archiver
}

// Open builds a Runtime from cfg: opens the catalog store, constructs every
// manager and cache, and wires the ANN path resolver to <data_path>/<space>/
// <version_unique_id>/index/index_file_<index_id>.idx.
func Open(cfg *config.Config) (*Runtime, error) {
	dbPath := cfg.DBName
	if !cfg.InMemory() {
		dbPath = filepath.Join(cfg.DataPath, cfg.DBName)
	}
	store, err := database.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}

	managers := catalog.NewManagers(store)
	idc := idcache.New(managers)

	resolve := func(idx *catalog.Index) (string, error) {
		version, err := managers.Version.GetByID(idx.VersionID)
		if err != nil {
			return "", err
		}
		space, err := managers.Space.GetByID(version.SpaceID)
		if err != nil {
			return "", err
		}
		return ann.FilePath(cfg.DataPath, space.Name, version.UniqueID, idx.ID), nil
	}

	indexCache, err := indexcache.New(managers, resolve, cfg.IndexCacheCap)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build index cache: %w", err)
	}

	hybridEngine := hybrid.New(idc, indexCache, managers, nil)
	minter := token.NewMinter(cfg.JWTKey, cfg.TokenExpire, managers.Token)
	resolver := token.NewPermissionResolver(idc.Token)
	archiver := snapshot.New(store, managers, idc, indexCache, cfg.DataPath)

	log.Info("runtime ready", "data_path", cfg.DataPath, "in_memory", cfg.InMemory())

	return &Runtime{
		Config:     cfg,
		Store:      store,
		Managers:   managers,
		IdCache:    idc,
		IndexCache: indexCache,
		Hybrid:     hybridEngine,
		Minter:     minter,
		Resolver:   resolver,
		Snapshots:  archiver,
	}, nil
}

// Close flushes every loaded ANN index and closes the catalog store.
func (r *Runtime) Close() error {
	r.IndexCache.Purge()
	return r.Store.Close()
}
