package testsupport

import (
	"path/filepath"
	"strings"
	"time"

	"exifheal/internal/metadata"
)

// RecordOption customizes a fixture file record.
type RecordOption func(*metadata.FileRecord)

// NewRecord builds a file record for the given path with sensible defaults.
func NewRecord(path string, opts ...RecordOption) *metadata.FileRecord {
	record := &metadata.FileRecord{
		Path:      path,
		Directory: filepath.Dir(path),
		Filename:  filepath.Base(path),
		Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		FileMtime: time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
		FileSize:  2048,
	}
	for _, opt := range opts {
		opt(record)
	}
	return record
}

// WithCaptureTime sets a resolved capture time from the primary EXIF tag.
func WithCaptureTime(t time.Time) RecordOption {
	return func(r *metadata.FileRecord) {
		r.DateTimeOriginal = &t
		r.CaptureTime = &t
		r.CaptureTimeSource = metadata.TimeSourceExifPrimary
	}
}

// WithGPS sets a coordinate on the record.
func WithGPS(lat, lon float64) RecordOption {
	return func(r *metadata.FileRecord) {
		r.GPS = &metadata.GPSCoord{Lat: lat, Lon: lon}
	}
}

// WithMtime sets the filesystem modification time.
func WithMtime(t time.Time) RecordOption {
	return func(r *metadata.FileRecord) {
		r.FileMtime = t
	}
}

// WithCamera sets the device make and model.
func WithCamera(cameraMake, cameraModel string) RecordOption {
	return func(r *metadata.FileRecord) {
		r.Make = cameraMake
		r.Model = cameraModel
	}
}

// TimeChange builds a proposed change with only the time category set.
func TimeChange(path, timestamp string, conf metadata.Confidence, source metadata.TimeSource) *metadata.ProposedChange {
	return &metadata.ProposedChange{
		Path:                path,
		NewDateTimeOriginal: timestamp,
		NewCreateDate:       timestamp,
		TimeConfidence:      conf,
		TimeSource:          source,
		GPSConfidence:       metadata.ConfidenceNone,
		GPSSource:           metadata.GPSSourceNone,
	}
}
