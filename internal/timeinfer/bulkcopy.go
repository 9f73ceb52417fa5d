package timeinfer

import (
	"sort"
	"time"

	"exifheal/internal/metadata"
)

// BulkCopyVersion is the classification algorithm version recorded alongside
// each directory flag so re-scans can detect drift after the heuristic
// changes.
const BulkCopyVersion = 1

const (
	bulkCopyClusterGap = 60 * time.Second
	bulkCopyRatio      = 0.8
	bulkCopyMinFiles   = 3
)

// DetectBulkCopy reports whether a directory's filesystem mtimes look like
// copy artifacts rather than capture evidence: more than 80% of files fall
// into one cluster of mtimes spaced at most 60 seconds apart. Directories
// with fewer than 3 files are never classified bulk-copied. This is a cheap
// heuristic; mistakes surface as lower confidence, not hard failures.
func DetectBulkCopy(records []*metadata.FileRecord) bool {
	if len(records) < bulkCopyMinFiles {
		return false
	}

	mtimes := make([]time.Time, len(records))
	for i, record := range records {
		mtimes[i] = record.FileMtime
	}
	sort.Slice(mtimes, func(i, j int) bool { return mtimes[i].Before(mtimes[j]) })

	largest, current := 1, 1
	for i := 1; i < len(mtimes); i++ {
		if mtimes[i].Sub(mtimes[i-1]) <= bulkCopyClusterGap {
			current++
		} else {
			current = 1
		}
		if current > largest {
			largest = current
		}
	}

	return float64(largest)/float64(len(mtimes)) > bulkCopyRatio
}
