package facade

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
	"github.com/tinyvectordb/tinyvectordb/internal/snapshot"
)

// SnapshotHandle is the Snapshot service's manager handle.
type SnapshotHandle struct {
	archiver *snapshot.Archiver
	dataPath string
}

// NewSnapshotHandle builds a SnapshotHandle over archiver, writing new
// archives and staging directories under dataPath.
func NewSnapshotHandle(archiver *snapshot.Archiver, dataPath string) *SnapshotHandle {
	return &SnapshotHandle{archiver: archiver, dataPath: dataPath}
}

type createSnapshotRequest struct {
	Selection json.RawMessage `json:"selection"`
}

// Create handles the §6 "create snapshot" ABI call.
func (h *SnapshotHandle) Create(req []byte) ([]byte, error) {
	var in createSnapshotRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	selection := "{}"
	if len(in.Selection) > 0 {
		selection = string(in.Selection)
	}

	name := clock.SnapshotName(time.Now())
	file := filepath.Join(h.dataPath, "snapshots", name)
	staging := filepath.Join(h.dataPath, "snapshots", "staging", name+".d")

	if err := h.archiver.Create(selection, file, staging); err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]string{"file": file})
}

type restoreSnapshotRequest struct {
	File string `json:"file"`
}

// Restore handles the §6 "restore snapshot" ABI call.
func (h *SnapshotHandle) Restore(req []byte) ([]byte, error) {
	var in restoreSnapshotRequest
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	target := filepath.Join(h.dataPath, "snapshots", "restore", fmt.Sprintf("%d", clock.NowUTC()))
	if err := h.archiver.Restore(in.File, target); err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(map[string]bool{"restored": true})
}
