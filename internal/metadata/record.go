package metadata

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ExifTimeFormat is the timestamp wire format exiftool reads and writes.
const ExifTimeFormat = "2006:01:02 15:04:05"

// FileRecord is one file's observed state at scan time: filesystem facts,
// the optional EXIF/XMP tag values, and the derived capture time with its
// provenance. Records are built fresh every scan and never carried across
// runs.
type FileRecord struct {
	Path      string
	Directory string
	Filename  string
	Extension string // lowercase, no dot
	FileMtime time.Time
	FileSize  int64

	// Tag values as read; nil when absent.
	DateTimeOriginal *time.Time
	CreateDate       *time.Time
	ModifyDate       *time.Time
	XMPDateCreated   *time.Time

	GPS *GPSCoord

	Make  string
	Model string

	// Derived by the capture-time resolver.
	CaptureTime       *time.Time
	CaptureTimeSource TimeSource

	// Filename parse is always attempted and stored independently of
	// whether it became the capture time.
	FilenameTime        *time.Time
	FilenameTimeHasTime bool // filename carried H:M:S, not just a date
}

// HasExifTime reports whether any of the primary EXIF time tags is present.
func (r *FileRecord) HasExifTime() bool {
	return r.DateTimeOriginal != nil || r.CreateDate != nil || r.ModifyDate != nil
}

// HasGPS reports whether the record carries a coordinate.
func (r *FileRecord) HasGPS() bool {
	return r.GPS != nil
}

// CameraKey pairs device make and model for camera-session grouping.
// Returns "" when either field is unknown. Values are NFC-normalized so the
// same camera read through differently-encoded firmware strings groups into
// one session.
func (r *FileRecord) CameraKey() string {
	cameraMake := strings.TrimSpace(r.Make)
	cameraModel := strings.TrimSpace(r.Model)
	if cameraMake == "" || cameraModel == "" {
		return ""
	}
	return norm.NFC.String(cameraMake) + "|" + norm.NFC.String(cameraModel)
}

// BestKnownTime returns the record's best time evidence: resolved capture
// time, then filename time, then filesystem mtime.
func (r *FileRecord) BestKnownTime() time.Time {
	if r.CaptureTime != nil {
		return *r.CaptureTime
	}
	if r.FilenameTime != nil {
		return *r.FilenameTime
	}
	return r.FileMtime
}
