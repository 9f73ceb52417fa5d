package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"exifheal/internal/metadata"
	"exifheal/internal/services/exiftool"
	"exifheal/internal/timeinfer"
)

// timezoneSuffix strips the offset exiftool appends to filesystem dates.
// Tag timestamps are treated as naive local times throughout.
var timezoneSuffix = regexp.MustCompile(`(?:Z|[+-]\d{2}:?\d{2})$`)

var exifTimeLayouts = []string{
	metadata.ExifTimeFormat,
	"2006-01-02 15:04:05",
	"2006:01:02",
}

func parseExifTime(value string) *time.Time {
	trimmed := strings.TrimSpace(timezoneSuffix.ReplaceAllString(strings.TrimSpace(value), ""))
	if trimmed == "" {
		return nil
	}
	for _, layout := range exifTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return &parsed
		}
	}
	return nil
}

func tagTime(raw exiftool.RawMetadata, name string, groups ...string) *time.Time {
	value, ok := raw.String(name, groups...)
	if !ok {
		return nil
	}
	return parseExifTime(value)
}

// buildRecord converts one exiftool JSON record into a FileRecord and
// resolves its capture time. Filesystem mtime and size come from a fresh
// stat when possible; the exiftool values only back them up, since the
// ledger's staleness check compares against the filesystem.
func buildRecord(raw exiftool.RawMetadata, logger *slog.Logger) *metadata.FileRecord {
	path := raw.SourceFile()
	if path == "" {
		return nil
	}

	record := &metadata.FileRecord{
		Path:      path,
		Directory: filepath.Dir(path),
		Filename:  filepath.Base(path),
		Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}

	info, statErr := os.Stat(path)
	if statErr == nil {
		record.FileMtime = info.ModTime()
		record.FileSize = info.Size()
	} else {
		logger.Warn("stat failed, falling back to exiftool values",
			slog.String("path", path),
			slog.String("error", statErr.Error()))
		if mtime := tagTime(raw, "FileModifyDate", "System"); mtime != nil {
			record.FileMtime = *mtime
		}
	}
	if size, ok := raw.Float("FileSize", "System", "File"); ok && record.FileSize == 0 {
		record.FileSize = int64(size)
	}

	record.DateTimeOriginal = tagTime(raw, "DateTimeOriginal", "ExifIFD", "IFD0", "XMP-exif")
	record.CreateDate = tagTime(raw, "CreateDate", "ExifIFD", "IFD0", "XMP-xmp")
	record.ModifyDate = tagTime(raw, "ModifyDate", "IFD0", "ExifIFD")
	record.XMPDateCreated = tagTime(raw, "DateCreated", "XMP-xmp", "XMP-photoshop")

	lat, latOK := raw.Float("GPSLatitude", "GPS", "Composite", "XMP-exif")
	lon, lonOK := raw.Float("GPSLongitude", "GPS", "Composite", "XMP-exif")
	if latOK && lonOK {
		record.GPS = &metadata.GPSCoord{Lat: lat, Lon: lon}
	}

	record.Make, _ = raw.String("Make", "IFD0")
	record.Model, _ = raw.String("Model", "IFD0")

	timeinfer.ResolveCaptureTime(record)
	return record
}
