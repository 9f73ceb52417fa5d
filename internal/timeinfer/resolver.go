package timeinfer

import (
	"regexp"
	"strconv"
	"time"

	"exifheal/internal/metadata"
)

// filenamePattern recognizes one filename convention. Patterns are tried in
// order; the first match wins.
type filenamePattern struct {
	re *regexp.Regexp
	// groups maps capture-group index (1-based) to a datetime component.
	groups  []rune // sequence of 'Y','m','d','H','M','S'
	hasTime bool
}

var filenamePatterns = []filenamePattern{
	// received_YYYYMMDD_<random> — bulk messaging, date only
	{re: regexp.MustCompile(`received_(\d{4})(\d{2})(\d{2})_`), groups: []rune("Ymd")},
	// IMG_YYYYMMDD_HHMMSS / VID_ / PXL_ — device captures
	{re: regexp.MustCompile(`(?:IMG|VID|PXL)_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`), groups: []rune("YmdHMS"), hasTime: true},
	// YYYYMMDD_HHMMSS — bare timestamp prefix
	{re: regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`), groups: []rune("YmdHMS"), hasTime: true},
	// IMG-YYYYMMDD-WAnnnn — messaging, date only
	{re: regexp.MustCompile(`IMG-(\d{4})(\d{2})(\d{2})-WA`), groups: []rune("Ymd")},
	// Screenshot_YYYYMMDD-HHMMSS
	{re: regexp.MustCompile(`Screenshot_(\d{4})(\d{2})(\d{2})-(\d{2})(\d{2})(\d{2})`), groups: []rune("YmdHMS"), hasTime: true},
	// YYYY-MM-DD HH.MM.SS or YYYY-MM-DD_HH.MM.SS — punctuated exports
	{re: regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[_ ](\d{2})\.(\d{2})\.(\d{2})`), groups: []rune("YmdHMS"), hasTime: true},
}

const (
	minFilenameYear = 1990
	maxFilenameYear = 2030
)

// ParseFilenameTime extracts a timestamp from a filename convention.
// The second result reports whether the match carried a time-of-day
// component; date-only patterns yield midnight. Returns (nil, false) when no
// pattern produces a calendar-valid value.
func ParseFilenameTime(filename string) (*time.Time, bool) {
	for _, pattern := range filenamePatterns {
		m := pattern.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}

		var year, month, day, hour, minute, second int
		for i, component := range pattern.groups {
			value, err := strconv.Atoi(m[i+1])
			if err != nil {
				value = 0
			}
			switch component {
			case 'Y':
				year = value
			case 'm':
				month = value
			case 'd':
				day = value
			case 'H':
				hour = value
			case 'M':
				minute = value
			case 'S':
				second = value
			}
		}

		if year < minFilenameYear || year > maxFilenameYear {
			continue
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		if hour > 23 || minute > 59 || second > 59 {
			continue
		}

		parsed := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
		// time.Date normalizes out-of-range days (Feb 30 becomes Mar 1);
		// treat normalization as no match.
		if parsed.Day() != day || parsed.Month() != time.Month(month) {
			continue
		}
		return &parsed, pattern.hasTime
	}
	return nil, false
}

// ResolveCaptureTime walks the priority chain and sets the record's capture
// time and provenance: DateTimeOriginal, CreateDate, ModifyDate, XMP
// DateCreated, then filename. Filesystem mtime is never promoted to capture
// time here; it stays a last-resort fallback inside Infer. The filename
// parse is stored on the record regardless of whether it won.
func ResolveCaptureTime(record *metadata.FileRecord) {
	record.FilenameTime, record.FilenameTimeHasTime = ParseFilenameTime(record.Filename)

	switch {
	case record.DateTimeOriginal != nil:
		record.CaptureTime = record.DateTimeOriginal
		record.CaptureTimeSource = metadata.TimeSourceExifPrimary
	case record.CreateDate != nil:
		record.CaptureTime = record.CreateDate
		record.CaptureTimeSource = metadata.TimeSourceExifCreate
	case record.ModifyDate != nil:
		record.CaptureTime = record.ModifyDate
		record.CaptureTimeSource = metadata.TimeSourceExifModify
	case record.XMPDateCreated != nil:
		record.CaptureTime = record.XMPDateCreated
		record.CaptureTimeSource = metadata.TimeSourceXMPCreated
	case record.FilenameTime != nil:
		record.CaptureTime = record.FilenameTime
		record.CaptureTimeSource = metadata.TimeSourceFilename
	}
}
