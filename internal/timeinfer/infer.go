package timeinfer

import (
	"fmt"
	"log/slog"
	"time"

	"exifheal/internal/metadata"
)

const (
	// maxDriftYears is the guardrail on |inferred - mtime|: beyond it the
	// proposal is downgraded to low and loses its ModifyDate component.
	maxDriftYears = 2.0
	yearSeconds   = 365.25 * 86400
)

// Options configures a time inference pass over one directory.
type Options struct {
	// MaxGap bounds the time distance between an anchor and the target.
	MaxGap time.Duration
	// UseMtime is false for bulk-copied directories, whose filesystem
	// mtimes are inadmissible both as sort keys and as the last-resort
	// fallback.
	UseMtime bool
	// Force re-evaluates records that already carry an EXIF time.
	Force bool
}

// Infer proposes timestamps for records lacking EXIF time (or all records
// when forced). Records must already have capture times resolved. The
// returned proposals are partials to be merged with the GPS pass; records
// themselves are not modified.
func Infer(records []*metadata.FileRecord, opts Options, log *slog.Logger) []metadata.TimeProposal {
	sorted := sortRecords(records, opts.UseMtime)

	var proposals []metadata.TimeProposal
	for idx, record := range sorted {
		if record.HasExifTime() && !opts.Force {
			continue
		}

		beforeIdx, afterIdx := findNeighbors(idx, sorted, opts.MaxGap, record.CameraKey())
		inferred, confidence, source, reason := resolveTarget(idx, sorted, beforeIdx, afterIdx)

		if !opts.UseMtime && source == metadata.TimeSourceFileMtime {
			// Bulk-copied directory: the mtime fallback would propose a
			// copy artifact, so no proposal at all.
			log.Debug("suppressing mtime fallback in bulk-copied directory",
				slog.String("file", record.Filename))
			continue
		}

		timeStr := inferred.Format(metadata.ExifTimeFormat)
		proposal := metadata.TimeProposal{
			Path:       record.Path,
			Primary:    timeStr,
			Create:     timeStr,
			Confidence: confidence,
			Source:     source,
			Reason:     reason,
		}
		if confidence.AtLeast(metadata.ConfidenceMed) && source != metadata.TimeSourceFileMtime {
			proposal.Modify = timeStr
		}
		if beforeIdx >= 0 {
			proposal.Neighbors = append(proposal.Neighbors, sorted[beforeIdx].Path)
		}
		if afterIdx >= 0 {
			proposal.Neighbors = append(proposal.Neighbors, sorted[afterIdx].Path)
		}

		drift := inferred.Sub(record.FileMtime)
		if drift < 0 {
			drift = -drift
		}
		driftYears := drift.Seconds() / yearSeconds
		proposal.MtimeDriftYears = driftYears
		if driftYears > maxDriftYears {
			log.Warn("large drift between inferred time and mtime",
				slog.String("file", record.Filename),
				slog.Float64("drift_years", driftYears),
				slog.Time("inferred", inferred),
				slog.Time("mtime", record.FileMtime))
			proposal.Confidence = metadata.ConfidenceLow
			proposal.Reason += fmt.Sprintf(" [DRIFT: %.1fyr from mtime]", driftYears)
			// The modification timestamp mirrors filesystem reality too
			// closely to overwrite on shaky evidence.
			proposal.Modify = ""
		}

		proposals = append(proposals, proposal)
	}
	return proposals
}

// resolveTarget computes the target's new time from its neighbors, falling
// back to filename evidence and finally filesystem mtime.
func resolveTarget(targetIdx int, records []*metadata.FileRecord, beforeIdx, afterIdx int) (time.Time, metadata.Confidence, metadata.TimeSource, string) {
	target := records[targetIdx]

	if beforeIdx >= 0 && afterIdx >= 0 {
		before, after := records[beforeIdx], records[afterIdx]
		span := afterIdx - beforeIdx
		pos := targetIdx - beforeIdx
		if span > 0 && before.CaptureTime != nil && after.CaptureTime != nil {
			// Linear interpolation by ordinal position in the sorted
			// sequence, not by any file-content proxy.
			fraction := float64(pos) / float64(span)
			delta := after.CaptureTime.Sub(*before.CaptureTime)
			inferred := before.CaptureTime.Add(time.Duration(float64(delta) * fraction))

			sameCamera := before.CameraKey() != "" && before.CameraKey() == after.CameraKey()
			confidence := metadata.ConfidenceMed
			cameraNote := "diff"
			if sameCamera {
				confidence = metadata.ConfidenceHigh
				cameraNote = "same"
			}
			reason := fmt.Sprintf("interpolated between %s and %s (pos %d/%d, %s camera)",
				before.Filename, after.Filename, pos, span, cameraNote)
			return inferred, confidence, metadata.TimeSourceNeighborInterp, reason
		}
	}

	if beforeIdx >= 0 && records[beforeIdx].CaptureTime != nil {
		before := records[beforeIdx]
		offset := targetIdx - beforeIdx
		inferred := before.CaptureTime.Add(time.Duration(offset) * time.Second)
		reason := fmt.Sprintf("copied from %s +%ds", before.Filename, offset)
		return inferred, metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy, reason
	}

	if afterIdx >= 0 && records[afterIdx].CaptureTime != nil {
		after := records[afterIdx]
		offset := afterIdx - targetIdx
		inferred := after.CaptureTime.Add(-time.Duration(offset) * time.Second)
		reason := fmt.Sprintf("copied from %s -%ds", after.Filename, offset)
		return inferred, metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy, reason
	}

	if target.FilenameTime != nil {
		if target.FilenameTimeHasTime {
			return *target.FilenameTime, metadata.ConfidenceMed, metadata.TimeSourceFilename, "filename timestamp (full)"
		}
		return *target.FilenameTime, metadata.ConfidenceLow, metadata.TimeSourceFilename, "filename timestamp (date_only)"
	}

	return target.FileMtime, metadata.ConfidenceLow, metadata.TimeSourceFileMtime, "file modification time (last resort)"
}
