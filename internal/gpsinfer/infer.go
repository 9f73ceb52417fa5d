package gpsinfer

import (
	"fmt"
	"log/slog"
	"time"

	"exifheal/internal/metadata"
)

// neighborHighConfidenceGap is the time distance under which a donor
// coordinate is trusted at high confidence.
const neighborHighConfidenceGap = time.Hour

// Options configures a GPS inference pass over one directory.
type Options struct {
	// MaxGap bounds the time distance between the target and a GPS donor.
	MaxGap time.Duration
	// MaxDistanceKM is the jump-guard radius around the directory centroid.
	MaxDistanceKM float64
	// AllowJumps downgrades centroid outliers to low confidence instead of
	// skipping them.
	AllowJumps bool
	// DefaultGPS is the coordinate of last resort when no neighbor or hint
	// matches.
	DefaultGPS *metadata.GPSCoord
	// Hints are consulted in order; the first whose window contains the
	// target's capture time wins.
	Hints []metadata.GPSHint
	// Force re-evaluates records that already carry GPS.
	Force bool
}

// Infer proposes coordinates for records lacking GPS (or all records when
// forced). It must run after the time pass with inferred capture times
// already applied to the records, so those times serve as search keys.
// Records are not modified; the returned partials are merged with the time
// pass by the caller.
func Infer(records []*metadata.FileRecord, opts Options, log *slog.Logger) []metadata.GPSProposal {
	centroid := Centroid(records)

	var proposals []metadata.GPSProposal
	for _, record := range records {
		if record.HasGPS() && !opts.Force {
			continue
		}

		proposal := metadata.GPSProposal{
			Path:       record.Path,
			Confidence: metadata.ConfidenceNone,
			Source:     metadata.GPSSourceNone,
		}

		if donor := findNeighbor(record, records, opts.MaxGap); donor != nil {
			gap := donor.BestKnownTime().Sub(record.BestKnownTime())
			if gap < 0 {
				gap = -gap
			}
			proposal.Coord = donor.GPS
			proposal.Source = metadata.GPSSourceNeighborCopy
			proposal.Confidence = metadata.ConfidenceMed
			if gap < neighborHighConfidenceGap {
				proposal.Confidence = metadata.ConfidenceHigh
			}
			proposal.Reason = fmt.Sprintf("copied from %s (gap=%.0fs)", donor.Filename, gap.Seconds())
			proposal.Neighbors = []string{donor.Path}
		} else if coord, label, ok := lookupHint(record, opts.Hints, opts.DefaultGPS); ok {
			proposal.Coord = coord
			proposal.Source = metadata.GPSSourceDefaultHint
			proposal.Confidence = metadata.ConfidenceLow
			proposal.Reason = "GPS hint: " + label
			proposal.HintLabel = label
		}

		if proposal.Coord == nil {
			continue
		}

		// Jump guard. Hint-derived coordinates are exempt: they are
		// expected to sit far from whatever GPS the directory has.
		if centroid != nil && proposal.Source != metadata.GPSSourceDefaultHint {
			dist := HaversineKM(*proposal.Coord, *centroid)
			proposal.CentroidDistanceKM = dist
			if dist > opts.MaxDistanceKM {
				if opts.AllowJumps {
					proposal.Confidence = metadata.ConfidenceLow
					proposal.Reason += fmt.Sprintf(" [GPS JUMP: %.1fkm from centroid]", dist)
				} else {
					log.Warn("GPS jump exceeds centroid guard",
						slog.String("file", record.Filename),
						slog.Float64("distance_km", dist),
						slog.Float64("max_km", opts.MaxDistanceKM))
					proposal.Skipped = true
					proposal.SkipReason = fmt.Sprintf("GPS jump %.1fkm > %.0fkm", dist, opts.MaxDistanceKM)
				}
			}
		}

		proposals = append(proposals, proposal)
	}
	return proposals
}

// findNeighbor returns the record whose best-known time is closest to the
// target's, among records carrying GPS, within the maximum gap.
func findNeighbor(target *metadata.FileRecord, records []*metadata.FileRecord, maxGap time.Duration) *metadata.FileRecord {
	targetTime := target.BestKnownTime()

	var best *metadata.FileRecord
	var bestGap time.Duration
	for _, candidate := range records {
		if candidate.Path == target.Path || candidate.GPS == nil {
			continue
		}
		gap := candidate.BestKnownTime().Sub(targetTime)
		if gap < 0 {
			gap = -gap
		}
		if gap > maxGap {
			continue
		}
		if best == nil || gap < bestGap {
			best = candidate
			bestGap = gap
		}
	}
	return best
}

// lookupHint finds the first configured hint whose inclusive window contains
// the target's capture (or filename) time, falling back to the default
// coordinate. The mtime is deliberately not used here: hint windows describe
// when photos were taken, not when files were copied.
func lookupHint(record *metadata.FileRecord, hints []metadata.GPSHint, defaultGPS *metadata.GPSCoord) (*metadata.GPSCoord, string, bool) {
	var captureTime *time.Time
	if record.CaptureTime != nil {
		captureTime = record.CaptureTime
	} else if record.FilenameTime != nil {
		captureTime = record.FilenameTime
	}

	if captureTime != nil {
		for _, hint := range hints {
			if hint.Contains(*captureTime) {
				coord := hint.Coord
				return &coord, hint.Label, true
			}
		}
	}
	if defaultGPS != nil {
		coord := *defaultGPS
		return &coord, "default_gps", true
	}
	return nil, "", false
}
