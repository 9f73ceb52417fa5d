// Package gate filters proposed changes against per-category confidence
// thresholds. Gated changes are flagged rather than dropped so reports and
// the ledger keep the full audit trail.
package gate

import (
	"fmt"
	"strings"

	"exifheal/internal/metadata"
)

// Thresholds are the minimum confidences a change must reach per category.
type Thresholds struct {
	MinTime metadata.Confidence
	MinGPS  metadata.Confidence
}

// Apply sets the gating flags on every change in place and returns the number
// of changes that remain fully actionable. A change with both categories
// gated still survives the pipeline; the applier strips it before writing.
func Apply(changes []*metadata.ProposedChange, thresholds Thresholds) int {
	actionable := 0
	for _, change := range changes {
		evaluate(change, thresholds)
		if change.HasAnyChange() && !change.Gated() {
			actionable++
		}
	}
	return actionable
}

func evaluate(change *metadata.ProposedChange, thresholds Thresholds) {
	var reasons []string

	if change.HasTimeChange() && change.TimeConfidence.Below(thresholds.MinTime) {
		change.GatedTime = true
		reasons = append(reasons, fmt.Sprintf("time confidence %s < threshold %s",
			change.TimeConfidence, thresholds.MinTime))
	}
	if change.HasGPSChange() && change.GPSConfidence.Below(thresholds.MinGPS) {
		change.GatedGPS = true
		reasons = append(reasons, fmt.Sprintf("gps confidence %s < threshold %s",
			change.GPSConfidence, thresholds.MinGPS))
	}

	change.GateReason = strings.Join(reasons, "; ")
}
