package facade

import "github.com/tinyvectordb/tinyvectordb/internal/runtime"

// Facade bundles every service handle behind one value, built once from a
// *runtime.Runtime by the embedding host (a cgo shim, the REST API, or the
// CLI).
type Facade struct {
	Space    *SpaceHandle
	Version  *VersionHandle
	Vector   *VectorHandle
	Search   *SearchHandle
	Snapshot *SnapshotHandle
	Token    *TokenHandle
}

// New builds a Facade over rt.
func New(rt *runtime.Runtime) *Facade {
	return &Facade{
		Space:    NewSpaceHandle(rt.Managers),
		Version:  NewVersionHandle(rt.Managers),
		Vector:   NewVectorHandle(rt.Managers, rt.IdCache, rt.IndexCache),
		Search:   NewSearchHandle(rt.Hybrid),
		Snapshot: NewSnapshotHandle(rt.Snapshots, rt.Config.DataPath),
		Token:    NewTokenHandle(rt.Minter),
	}
}
