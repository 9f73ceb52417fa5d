package metadata

import "sort"

// TimeProposal is the time engine's partial result for one file. Timestamp
// strings use the exiftool wire format "YYYY:MM:DD HH:MM:SS".
type TimeProposal struct {
	Path            string
	Primary         string // DateTimeOriginal
	Create          string // CreateDate, mirrors Primary
	Modify          string // ModifyDate, only at med+ confidence and non-mtime source
	Confidence      Confidence
	Source          TimeSource
	Reason          string
	Neighbors       []string
	MtimeDriftYears float64
}

// GPSProposal is the GPS engine's partial result for one file.
type GPSProposal struct {
	Path               string
	Coord              *GPSCoord
	Confidence         Confidence
	Source             GPSSource
	Reason             string
	Neighbors          []string
	CentroidDistanceKM float64
	HintLabel          string
	Skipped            bool
	SkipReason         string
}

// ProposedChange is one file's candidate edit after the two inference passes
// are merged: the values to write, per-category confidence and provenance,
// the human-readable justification, and the gating flags.
type ProposedChange struct {
	Path string

	NewDateTimeOriginal string
	NewCreateDate       string
	NewModifyDate       string

	NewGPS *GPSCoord

	TimeConfidence Confidence
	TimeSource     TimeSource
	GPSConfidence  Confidence
	GPSSource      GPSSource

	ReasonTime    string
	ReasonGPS     string
	NeighborsTime []string
	NeighborsGPS  []string

	TimeMtimeDriftYears   float64
	GPSCentroidDistanceKM float64
	GPSHintLabel          string

	Skipped    bool
	SkipReason string
	GatedTime  bool
	GatedGPS   bool
	GateReason string
}

// HasTimeChange reports whether the change proposes a new timestamp.
func (c *ProposedChange) HasTimeChange() bool {
	return c.NewDateTimeOriginal != ""
}

// HasGPSChange reports whether the change proposes a new coordinate.
func (c *ProposedChange) HasGPSChange() bool {
	return c.NewGPS != nil
}

// HasAnyChange reports whether the change proposes anything at all.
// A change with neither a timestamp nor a coordinate is semantically empty
// and must not be persisted or reported as actionable.
func (c *ProposedChange) HasAnyChange() bool {
	return c.HasTimeChange() || c.HasGPSChange()
}

// Gated reports whether every category the change proposes fell below its
// threshold, leaving nothing to write.
func (c *ProposedChange) Gated() bool {
	timeBlocked := !c.HasTimeChange() || c.GatedTime
	gpsBlocked := !c.HasGPSChange() || c.GatedGPS || c.Skipped
	return timeBlocked && gpsBlocked
}

// BestConfidence returns the stronger of the time and GPS confidences,
// counting only categories the change actually proposes.
func (c *ProposedChange) BestConfidence() Confidence {
	best := ConfidenceNone
	if c.HasTimeChange() {
		best = MaxConfidence(best, c.TimeConfidence)
	}
	if c.HasGPSChange() {
		best = MaxConfidence(best, c.GPSConfidence)
	}
	return best
}

// Merge combines the partial proposals of the two inference passes into one
// change per path. It is a pure function: inputs are not modified, and the
// output order is deterministic (descending best confidence, then path).
func Merge(times []TimeProposal, gps []GPSProposal) []*ProposedChange {
	byPath := make(map[string]*ProposedChange, len(times)+len(gps))
	order := make([]string, 0, len(times)+len(gps))

	for i := range times {
		tp := &times[i]
		change := &ProposedChange{
			Path:                tp.Path,
			NewDateTimeOriginal: tp.Primary,
			NewCreateDate:       tp.Create,
			NewModifyDate:       tp.Modify,
			TimeConfidence:      tp.Confidence,
			TimeSource:          tp.Source,
			GPSConfidence:       ConfidenceNone,
			GPSSource:           GPSSourceNone,
			ReasonTime:          tp.Reason,
			NeighborsTime:       append([]string(nil), tp.Neighbors...),
			TimeMtimeDriftYears: tp.MtimeDriftYears,
		}
		byPath[tp.Path] = change
		order = append(order, tp.Path)
	}

	for i := range gps {
		gp := &gps[i]
		change, ok := byPath[gp.Path]
		if !ok {
			change = &ProposedChange{
				Path:           gp.Path,
				TimeConfidence: ConfidenceNone,
				GPSSource:      GPSSourceNone,
				GPSConfidence:  ConfidenceNone,
			}
			byPath[gp.Path] = change
			order = append(order, gp.Path)
		}
		change.NewGPS = gp.Coord
		change.GPSConfidence = gp.Confidence
		change.GPSSource = gp.Source
		change.ReasonGPS = gp.Reason
		change.NeighborsGPS = append([]string(nil), gp.Neighbors...)
		change.GPSCentroidDistanceKM = gp.CentroidDistanceKM
		change.GPSHintLabel = gp.HintLabel
		if gp.Skipped {
			change.Skipped = true
			change.SkipReason = gp.SkipReason
		}
	}

	merged := make([]*ProposedChange, 0, len(order))
	for _, path := range order {
		change := byPath[path]
		if change.HasAnyChange() {
			merged = append(merged, change)
		}
	}

	// Descending best confidence so a caller-supplied limit keeps the
	// strongest proposals regardless of change type.
	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := merged[i].BestConfidence().Rank(), merged[j].BestConfidence().Rank()
		if ri != rj {
			return ri > rj
		}
		return merged[i].Path < merged[j].Path
	})
	return merged
}
