// Package clock provides the two process-wide primitives the catalog needs
// for timestamps and externally-visible identifiers: monotone UTC seconds
// and random-suffix generation for file and snapshot names.
package clock

import (
	"time"

	"github.com/google/uuid"
)

// NowUTC returns the current time as whole UTC seconds since the epoch, the
// unit every created_utc/updated_utc/expire_utc column is stored in.
func NowUTC() int64 {
	return time.Now().UTC().Unix()
}

// RandomSuffix returns a short, filesystem-safe random token suitable for
// disambiguating file names created within the same second (snapshot files,
// staging directories).
func RandomSuffix() string {
	id := uuid.New()
	return id.String()[:8]
}

// SnapshotName formats the canonical snapshot archive name for a given UTC
// time, per the persisted-state layout: snapshot-YYYYMMDDHHMM.zip.
func SnapshotName(t time.Time) string {
	return "snapshot-" + t.UTC().Format("200601021504") + ".zip"
}
