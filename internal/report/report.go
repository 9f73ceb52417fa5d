// Package report writes machine-readable change reports and aggregates
// scan counters.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"exifheal/internal/metadata"
)

// Entry is one JSONL report line describing a proposed change, including
// the values it would replace and every gating decision.
type Entry struct {
	File   string    `json:"file"`
	Action string    `json:"action"`
	Old    TagValues `json:"old"`
	New    TagValues `json:"new"`

	ConfidenceTime string `json:"confidence_time"`
	ConfidenceGPS  string `json:"confidence_gps"`
	ReasonTime     string `json:"reason_time"`
	ReasonGPS      string `json:"reason_gps"`
	TimeSource     string `json:"time_source"`
	GPSSource      string `json:"gps_source"`

	NeighborsUsed         []string `json:"neighbors_used"`
	MtimeDriftYears       float64  `json:"mtime_drift_years"`
	GPSCentroidDistanceKM float64  `json:"gps_centroid_distance_km"`
	GPSHintLabel          string   `json:"gps_hint_label,omitempty"`

	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`

	Gated      bool   `json:"gated,omitempty"`
	GatedTime  bool   `json:"gated_time,omitempty"`
	GatedGPS   bool   `json:"gated_gps,omitempty"`
	GateReason string `json:"gate_reason,omitempty"`
}

// TagValues captures the writable tags at one point in time.
type TagValues struct {
	DateTimeOriginal *string  `json:"DateTimeOriginal"`
	CreateDate       *string  `json:"CreateDate"`
	ModifyDate       *string  `json:"ModifyDate"`
	GPSLatitude      *float64 `json:"GPSLatitude"`
	GPSLongitude     *float64 `json:"GPSLongitude"`
}

// Writer appends JSONL entries to a report file.
type Writer struct {
	file *os.File
	enc  *json.Encoder
}

// NewWriter creates or truncates the report file.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return &Writer{file: file, enc: json.NewEncoder(file)}, nil
}

// WriteChange appends one entry built from a record and its proposal.
func (w *Writer) WriteChange(record *metadata.FileRecord, change *metadata.ProposedChange) error {
	entry := BuildEntry(record, change)
	if err := w.enc.Encode(entry); err != nil {
		return fmt.Errorf("encode report entry: %w", err)
	}
	return nil
}

// Close flushes and closes the report file.
func (w *Writer) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// BuildEntry converts a record/change pair into a report entry.
func BuildEntry(record *metadata.FileRecord, change *metadata.ProposedChange) Entry {
	entry := Entry{
		File:           change.Path,
		Action:         action(change),
		Old:            oldValues(record),
		New:            newValues(change),
		ConfidenceTime: string(change.TimeConfidence),
		ConfidenceGPS:  string(change.GPSConfidence),
		ReasonTime:     change.ReasonTime,
		ReasonGPS:      change.ReasonGPS,
		TimeSource:     string(change.TimeSource),
		GPSSource:      string(change.GPSSource),

		NeighborsUsed:         append(append([]string{}, change.NeighborsTime...), change.NeighborsGPS...),
		MtimeDriftYears:       round2(change.TimeMtimeDriftYears),
		GPSCentroidDistanceKM: round2(change.GPSCentroidDistanceKM),
		GPSHintLabel:          change.GPSHintLabel,
	}

	if change.Skipped {
		entry.Skipped = true
		entry.SkipReason = change.SkipReason
	}
	if change.GatedTime || change.GatedGPS {
		entry.Gated = true
		entry.GatedTime = change.GatedTime
		entry.GatedGPS = change.GatedGPS
		entry.GateReason = change.GateReason
	}
	return entry
}

func action(change *metadata.ProposedChange) string {
	switch {
	case change.Skipped:
		return "skip"
	case change.HasTimeChange() && change.HasGPSChange():
		return "set_both"
	case change.HasTimeChange():
		return "set_time"
	case change.HasGPSChange():
		return "set_gps"
	default:
		return "skip"
	}
}

func oldValues(record *metadata.FileRecord) TagValues {
	values := TagValues{
		DateTimeOriginal: formatTime(record.DateTimeOriginal),
		CreateDate:       formatTime(record.CreateDate),
		ModifyDate:       formatTime(record.ModifyDate),
	}
	if record.GPS != nil {
		values.GPSLatitude = &record.GPS.Lat
		values.GPSLongitude = &record.GPS.Lon
	}
	return values
}

func newValues(change *metadata.ProposedChange) TagValues {
	values := TagValues{
		DateTimeOriginal: nonEmpty(change.NewDateTimeOriginal),
		CreateDate:       nonEmpty(change.NewCreateDate),
		ModifyDate:       nonEmpty(change.NewModifyDate),
	}
	if change.NewGPS != nil {
		values.GPSLatitude = &change.NewGPS.Lat
		values.GPSLongitude = &change.NewGPS.Lon
	}
	return values
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(metadata.ExifTimeFormat)
	return &s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
