package ledger

import (
	"time"

	"exifheal/internal/metadata"
)

// PendingChange pairs a stored proposal with the file snapshot it was
// derived from. Stale is set when the file on disk no longer matches the
// snapshot; stale proposals are reported but never written.
type PendingChange struct {
	Path      string
	Directory string
	MtimeNS   int64
	Size      int64
	Change    *metadata.ProposedChange
	Applied   bool
	Stale     bool
}

// ScanRun is one recorded scan invocation.
type ScanRun struct {
	ID              int64
	UUID            string
	Root            string
	StartedAt       time.Time
	FinishedAt      *time.Time
	FileCount       int64
	ChangesProposed int64
}

// Stats aggregates ledger state for status output.
type Stats struct {
	TotalFiles     int
	Pending        int
	Applied        int
	BulkCopiedDirs int
}
