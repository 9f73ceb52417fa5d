package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// readTags are the tags requested on every read, group-qualified so the
// JSON keys are unambiguous across file formats.
var readTags = []string{
	"-ExifIFD:DateTimeOriginal",
	"-ExifIFD:CreateDate",
	"-IFD0:ModifyDate",
	"-GPS:GPSLatitude",
	"-GPS:GPSLongitude",
	"-XMP-xmp:DateCreated",
	"-System:FileModifyDate",
	"-System:FileName",
	"-System:Directory",
	"-System:FileSize",
	"-File:FileSize",
	"-IFD0:Make",
	"-IFD0:Model",
}

// emptyTimestampSentinel is what some cameras write instead of omitting
// the tag.
const emptyTimestampSentinel = "0000:00:00 00:00:00"

// RawMetadata is one file's exiftool JSON record.
type RawMetadata map[string]any

// SourceFile returns the path exiftool read the record from.
func (r RawMetadata) SourceFile() string {
	if v, ok := r["SourceFile"].(string); ok {
		return v
	}
	return ""
}

// Tag extracts a tag value, trying each group prefix in order and then the
// bare name. Empty strings, nulls, and zeroed timestamps count as absent.
func (r RawMetadata) Tag(name string, groups ...string) (any, bool) {
	for _, group := range groups {
		if value, ok := present(r[group+":"+name]); ok {
			return value, true
		}
	}
	if value, ok := present(r[name]); ok {
		return value, true
	}
	return nil, false
}

// String returns a tag value coerced to a string.
func (r RawMetadata) String(name string, groups ...string) (string, bool) {
	value, ok := r.Tag(name, groups...)
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// Float returns a numeric tag value. The -n read flag keeps numbers
// unformatted, so GPS coordinates arrive as JSON numbers.
func (r RawMetadata) Float(name string, groups ...string) (float64, bool) {
	value, ok := r.Tag(name, groups...)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func present(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if s, ok := value.(string); ok && (s == "" || s == emptyTimestampSentinel) {
		return nil, false
	}
	return value, true
}

// ReadDirectory reads metadata for all matching files directly inside a
// directory (non-recursive) in one invocation. A read timeout yields an
// empty result so the caller can fall back to filesystem data.
func (c *Client) ReadDirectory(ctx context.Context, dir string, extensions []string) ([]RawMetadata, error) {
	args := []string{"-j", "-n", "-G1", "-api", "IgnoreMinorErrors=1"}
	args = append(args, readTags...)
	for _, ext := range extensions {
		args = append(args, "-ext", ext)
	}
	args = append(args, dir+"/")

	return c.read(ctx, args, dir)
}

// ReadFiles reads metadata for an explicit file list, used for targeted
// re-reads after apply.
func (c *Client) ReadFiles(ctx context.Context, paths []string) ([]RawMetadata, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := []string{"-j", "-n", "-G1", "-api", "IgnoreMinorErrors=1"}
	args = append(args, readTags...)
	args = append(args, paths...)

	return c.read(ctx, args, fmt.Sprintf("%d files", len(paths)))
}

func (c *Client) read(ctx context.Context, args []string, target string) ([]RawMetadata, error) {
	readCtx := ctx
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}

	stdout, stderr, err := c.exec.Run(readCtx, c.binary, args)
	if err != nil {
		if errors.Is(readCtx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("exiftool timed out reading", slog.String("target", target))
			return nil, nil
		}
		return nil, err
	}
	c.logStderr(stderr)

	trimmed := strings.TrimSpace(string(stdout))
	if trimmed == "" {
		return nil, nil
	}

	var records []RawMetadata
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("parse exiftool JSON for %s: %w", target, err)
	}
	return records, nil
}
