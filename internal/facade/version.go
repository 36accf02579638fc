package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// VersionHandle is the Version service's manager handle.
type VersionHandle struct {
	managers *catalog.Managers
}

// NewVersionHandle builds a VersionHandle over managers.
func NewVersionHandle(managers *catalog.Managers) *VersionHandle {
	return &VersionHandle{managers: managers}
}

type versionResponse struct {
	ID          int64  `json:"id"`
	UniqueID    int64  `json:"unique_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	IsDefault   bool   `json:"is_default"`
	CreatedUTC  int64  `json:"created_utc"`
}

func toVersionResponse(v *catalog.Version) versionResponse {
	return versionResponse{
		ID: v.ID, UniqueID: v.UniqueID, Name: v.Name, Description: v.Description,
		Tag: v.Tag, IsDefault: v.IsDefault, CreatedUTC: v.CreatedUTC,
	}
}

// Add handles the §6 "add version" ABI call.
func (h *VersionHandle) Add(req []byte) ([]byte, error) {
	var in struct {
		SpaceID     int64  `json:"space_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Tag         string `json:"tag"`
		IsDefault   bool   `json:"is_default"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	v, err := h.managers.Version.Add(in.SpaceID, in.Name, in.Description, in.Tag, in.IsDefault)
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(toVersionResponse(v))
}

// List handles the §6 "list versions" ABI call.
func (h *VersionHandle) List(req []byte) ([]byte, error) {
	var in struct {
		SpaceID int64 `json:"space_id"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	versions, err := h.managers.Version.GetAll(in.SpaceID)
	if err != nil {
		return errorResponse(err), nil
	}
	out := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, toVersionResponse(v))
	}
	return json.Marshal(out)
}

// Get handles the §6 "get version" ABI call; unique_id == 0 resolves to the
// space's default version.
func (h *VersionHandle) Get(req []byte) ([]byte, error) {
	var in struct {
		SpaceID  int64 `json:"space_id"`
		UniqueID int64 `json:"unique_id"`
	}
	if err := json.Unmarshal(req, &in); err != nil {
		return parseError(err), nil
	}
	v, err := h.managers.Version.GetByUniqueID(in.SpaceID, in.UniqueID)
	if err != nil {
		return errorResponse(err), nil
	}
	return json.Marshal(toVersionResponse(v))
}
