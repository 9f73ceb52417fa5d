package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"exifheal/internal/metadata"
)

type hintFile struct {
	Hints []hintEntry `json:"hints"`
}

type hintEntry struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// LoadHints reads the GPS hint windows from a JSON file. Returns nil when
// the path is empty. Hint order in the file is preserved: lookups take the
// first matching window.
func LoadHints(path string) ([]metadata.GPSHint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints file: %w", err)
	}
	var file hintFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse hints file: %w", err)
	}

	hints := make([]metadata.GPSHint, 0, len(file.Hints))
	for i, entry := range file.Hints {
		from, err := parseHintDate(entry.From, false)
		if err != nil {
			return nil, fmt.Errorf("hint %d: from: %w", i, err)
		}
		to, err := parseHintDate(entry.To, true)
		if err != nil {
			return nil, fmt.Errorf("hint %d: to: %w", i, err)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("hint %d: window ends before it starts", i)
		}
		label := entry.Label
		if label == "" {
			label = fmt.Sprintf("hint_%d", i)
		}
		hints = append(hints, metadata.GPSHint{
			From:  from,
			To:    to,
			Coord: metadata.GPSCoord{Lat: entry.Lat, Lon: entry.Lon},
			Label: label,
		})
	}
	return hints, nil
}

// parseHintDate accepts RFC 3339 timestamps or bare dates. Bare dates are
// interpreted in local time, matching how EXIF timestamps are parsed, so a
// window covers the same wall-clock span the user wrote down. A bare date on
// the closing side of a window extends to the end of that day so the
// interval stays inclusive.
func parseHintDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
