package ann

import (
	"fmt"
	"path/filepath"
)

// FilePath returns the on-disk index file path for an Index, matching
// <data_path>/<space_name>/<version_unique_id>/index/index_file_<index_id>.idx.
func FilePath(dataPath, spaceName string, versionUniqueID, indexID int64) string {
	return filepath.Join(
		dataPath, spaceName, fmt.Sprintf("%d", versionUniqueID), "index",
		fmt.Sprintf("index_file_%d.idx", indexID),
	)
}
