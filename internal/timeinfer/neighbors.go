package timeinfer

import (
	"sort"
	"time"

	"exifheal/internal/metadata"
)

// isAnchor reports whether a record's time is trusted interpolation
// evidence: an EXIF/XMP tag source, or a filename parse that carried a
// time-of-day component.
func isAnchor(record *metadata.FileRecord) bool {
	if metadata.IsExifTimeSource(record.CaptureTimeSource) {
		return true
	}
	return record.CaptureTimeSource == metadata.TimeSourceFilename && record.FilenameTimeHasTime
}

func withinGap(anchor, target *metadata.FileRecord, maxGap time.Duration) bool {
	gap := anchor.BestKnownTime().Sub(target.BestKnownTime())
	if gap < 0 {
		gap = -gap
	}
	return gap <= maxGap
}

// sortRecords returns the directory's records in the stable positional
// ordering used for interpolation: resolved capture time first, then
// filename time, then (when admissible) filesystem mtime. Records with no
// usable time sort to the end. useMtime is false for bulk-copied
// directories, whose mtimes are copy artifacts.
func sortRecords(records []*metadata.FileRecord, useMtime bool) []*metadata.FileRecord {
	sorted := append([]*metadata.FileRecord(nil), records...)
	key := func(r *metadata.FileRecord) (time.Time, string) {
		if r.CaptureTime != nil {
			return *r.CaptureTime, r.Filename
		}
		if r.FilenameTime != nil {
			return *r.FilenameTime, r.Filename
		}
		if useMtime {
			return r.FileMtime, r.Filename
		}
		// Sentinel "latest" placement keeps untimed records out of the
		// interpolation span.
		return maxTime, r.Filename
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, ni := key(sorted[i])
		tj, nj := key(sorted[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ni < nj
	})
	return sorted
}

var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// findNeighbors locates the nearest anchors on each side of the target in
// the sorted sequence, returning their indices (-1 when absent). The search
// runs twice over the same routine: first restricted to the target's camera
// key, then unrestricted when that pass finds nothing on either side. An
// anchor only qualifies when its time gap to the target is within maxGap.
func findNeighbors(targetIdx int, records []*metadata.FileRecord, maxGap time.Duration, cameraKey string) (beforeIdx, afterIdx int) {
	filters := []string{""}
	if cameraKey != "" {
		filters = []string{cameraKey, ""}
	}

	target := records[targetIdx]
	for _, filter := range filters {
		candidate := func(r *metadata.FileRecord) bool {
			if !isAnchor(r) {
				return false
			}
			return filter == "" || r.CameraKey() == filter
		}
		beforeIdx, afterIdx = scanForAnchors(targetIdx, records, candidate, func(r *metadata.FileRecord) bool {
			return withinGap(r, target, maxGap)
		})
		if beforeIdx >= 0 || afterIdx >= 0 {
			return beforeIdx, afterIdx
		}
	}
	return -1, -1
}

// scanForAnchors walks outward from the target, skipping records that are
// not candidates, and stops at the nearest candidate per side. A candidate
// that fails accept (outside the gap) ends the walk on that side without
// yielding to a farther one.
func scanForAnchors(targetIdx int, records []*metadata.FileRecord, candidate, accept func(*metadata.FileRecord) bool) (beforeIdx, afterIdx int) {
	beforeIdx, afterIdx = -1, -1
	for i := targetIdx - 1; i >= 0; i-- {
		if !candidate(records[i]) {
			continue
		}
		if accept(records[i]) {
			beforeIdx = i
		}
		break
	}
	for i := targetIdx + 1; i < len(records); i++ {
		if !candidate(records[i]) {
			continue
		}
		if accept(records[i]) {
			afterIdx = i
		}
		break
	}
	return beforeIdx, afterIdx
}
