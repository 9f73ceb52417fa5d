package exiftool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"exifheal/internal/metadata"
)

// WriteOptions controls which auxiliary tags accompany the primary values.
type WriteOptions struct {
	// Provenance records the inference source and confidence in XMP tags
	// so a later run can re-derive gating decisions from the file itself.
	Provenance bool
	// XMPMirror duplicates written values into XMP for consumers that
	// never read EXIF.
	XMPMirror bool
}

// WriteResult reports a batch write outcome.
type WriteResult struct {
	Written    []string
	NotWritten []string
	ErrorCount int
}

// GenerateArgfile renders the argfile for a batch of changes and returns
// the file paths in block order. Each file occupies its own block ending in
// -execute, so write outcomes map back to paths positionally. Gated and
// skipped categories are omitted; a change with nothing left to write is
// dropped from the batch.
func GenerateArgfile(changes []*metadata.ProposedChange, opts WriteOptions) (string, []string) {
	var lines []string
	var paths []string

	for _, change := range changes {
		writeTime := change.HasTimeChange() && !change.GatedTime
		writeGPS := change.HasGPSChange() && !change.GatedGPS && !change.Skipped
		if !writeTime && !writeGPS {
			continue
		}

		if writeTime {
			lines = append(lines, "-DateTimeOriginal="+change.NewDateTimeOriginal)
			if change.NewCreateDate != "" {
				lines = append(lines, "-CreateDate="+change.NewCreateDate)
			}
			if change.NewModifyDate != "" {
				lines = append(lines, "-ModifyDate="+change.NewModifyDate)
			}
			if opts.XMPMirror {
				lines = append(lines,
					"-XMP-xmp:DateCreated="+change.NewDateTimeOriginal,
					"-XMP-photoshop:DateCreated="+change.NewDateTimeOriginal,
				)
			}
		}

		if writeGPS {
			lat := strconv.FormatFloat(change.NewGPS.Lat, 'f', -1, 64)
			lon := strconv.FormatFloat(change.NewGPS.Lon, 'f', -1, 64)
			lines = append(lines, "-GPSLatitude="+lat, "-GPSLongitude="+lon)
			if opts.XMPMirror {
				lines = append(lines,
					"-XMP-exif:GPSLatitude="+lat,
					"-XMP-exif:GPSLongitude="+lon,
				)
			}
		}

		if opts.Provenance {
			if writeTime {
				lines = append(lines,
					"-XMP-xmp:ExifHealTimeSource="+string(change.TimeSource),
					"-XMP-xmp:ExifHealTimeConfidence="+string(change.TimeConfidence),
				)
			}
			if writeGPS {
				lines = append(lines,
					"-XMP-xmp:ExifHealGPSSource="+string(change.GPSSource),
					"-XMP-xmp:ExifHealGPSConfidence="+string(change.GPSConfidence),
				)
			}
		}

		lines = append(lines, change.Path, "-execute")
		paths = append(paths, change.Path)
	}

	return strings.Join(lines, "\n"), paths
}

// WriteBatch writes a batch of changes through one exiftool invocation and
// reports which files were actually updated. Original file modification
// times are preserved (-P) and no backup copies are left behind by exiftool
// itself.
func (c *Client) WriteBatch(ctx context.Context, changes []*metadata.ProposedChange, opts WriteOptions) (WriteResult, error) {
	content, paths := GenerateArgfile(changes, opts)
	if len(paths) == 0 {
		return WriteResult{}, nil
	}

	argfile, err := os.CreateTemp("", "exifheal-args-*.txt")
	if err != nil {
		return WriteResult{}, fmt.Errorf("create argfile: %w", err)
	}
	argfilePath := argfile.Name()
	defer os.Remove(argfilePath)

	if _, err := argfile.WriteString(content + "\n"); err != nil {
		_ = argfile.Close()
		return WriteResult{}, fmt.Errorf("write argfile: %w", err)
	}
	if err := argfile.Close(); err != nil {
		return WriteResult{}, fmt.Errorf("close argfile: %w", err)
	}

	writeCtx := ctx
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	args := []string{"-overwrite_original_in_place", "-P", "-@", argfilePath}
	stdout, stderr, err := c.exec.Run(writeCtx, c.binary, args)
	if err != nil {
		if errors.Is(writeCtx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("exiftool timed out writing", slog.Int("files", len(paths)))
			return WriteResult{NotWritten: paths}, nil
		}
		return WriteResult{}, err
	}
	c.logStderr(stderr)

	return parseWriteOutcomes(string(stdout), paths), nil
}

// parseWriteOutcomes maps exiftool's per-batch result lines back to file
// paths. Each -execute block produces either "N image files updated" or
// "Nothing to do."; the summary line "N files weren't updated due to
// errors" is not a batch result and must not shift the positional mapping.
// Paths beyond the reported outcomes count as not written.
func parseWriteOutcomes(stdout string, expected []string) WriteResult {
	var outcomes []bool
	result := WriteResult{}

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "files weren't updated due to errors"):
			fields := strings.Fields(line)
			if len(fields) > 0 {
				if count, err := strconv.Atoi(fields[0]); err == nil {
					result.ErrorCount = count
				}
			}
		case strings.Contains(lower, "image files updated"):
			fields := strings.Fields(line)
			if len(fields) > 0 {
				if count, err := strconv.Atoi(fields[0]); err == nil {
					outcomes = append(outcomes, count > 0)
				}
			}
		case lower == "nothing to do.":
			outcomes = append(outcomes, false)
		}
	}

	for idx, path := range expected {
		if idx < len(outcomes) && outcomes[idx] {
			result.Written = append(result.Written, path)
		} else {
			result.NotWritten = append(result.NotWritten, path)
		}
	}
	return result
}
