package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"exifheal/internal/config"
	"exifheal/internal/metadata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("config file should have been found")
	}
	if cfg.Scan.MaxTimeGap != 21600 {
		t.Fatalf("max_time_gap = %d, expected 21600", cfg.Scan.MaxTimeGap)
	}
	if cfg.GPS.MaxDistanceKM != 50.0 {
		t.Fatalf("max_distance_km = %f, expected 50", cfg.GPS.MaxDistanceKM)
	}
	if !cfg.Scan.UseMtime {
		t.Fatal("use_mtime should default to true")
	}
	if cfg.MinTimeThreshold() != metadata.ConfidenceMed {
		t.Fatalf("min time threshold = %s, expected med", cfg.MinTimeThreshold())
	}
	if got := cfg.Scan.Extensions; len(got) != 8 || got[0] != "jpg" {
		t.Fatalf("unexpected default extensions: %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[scan]
extensions = [".JPG", "heic", "heic"]
max_time_gap = 3600

[gps]
default_coordinate = "48.1351, 11.5820"

[apply]
min_time_confidence = "LOW"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Scan.Extensions; len(got) != 2 || got[0] != "jpg" || got[1] != "heic" {
		t.Fatalf("extensions not normalized and deduplicated: %v", got)
	}
	if cfg.Scan.MaxTimeGap != 3600 {
		t.Fatalf("max_time_gap = %d", cfg.Scan.MaxTimeGap)
	}
	coord := cfg.DefaultCoord()
	if coord == nil || coord.Lat != 48.1351 {
		t.Fatalf("default coordinate not parsed: %v", coord)
	}
	if cfg.MinTimeThreshold() != metadata.ConfidenceLow {
		t.Fatalf("min time threshold = %s, expected low", cfg.MinTimeThreshold())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad confidence",
			content: "[apply]\nmin_time_confidence = \"maybe\"\n",
			wantErr: "min_time_confidence",
		},
		{
			name:    "bad coordinate",
			content: "[gps]\ndefault_coordinate = \"48.1\"\n",
			wantErr: "default_coordinate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadHints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	content := `{"hints": [
		{"from": "2019-08-01", "to": "2019-08-31", "lat": 35.6762, "lon": 139.6503, "label": "tokyo"},
		{"from": "2020-01-01T12:00:00Z", "to": "2020-01-02T12:00:00Z", "lat": 48.1, "lon": 11.5}
	]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write hints: %v", err)
	}

	hints, err := config.LoadHints(path)
	if err != nil {
		t.Fatalf("load hints: %v", err)
	}
	if len(hints) != 2 {
		t.Fatalf("expected 2 hints, got %d", len(hints))
	}
	if hints[0].Label != "tokyo" {
		t.Fatalf("label = %q", hints[0].Label)
	}
	endOfMonth := time.Date(2019, 8, 31, 23, 59, 59, 0, time.Local)
	if !hints[0].Contains(endOfMonth) {
		t.Fatal("date-only window must include the whole closing day")
	}
	if hints[1].Label != "hint_1" {
		t.Fatalf("unlabeled hint = %q, expected generated label", hints[1].Label)
	}
}

func TestLoadHintsDateWindowsUseLocalTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	content := `{"hints": [{"from": "2021-06-01", "to": "2021-06-10", "lat": 48.1, "lon": 11.5}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write hints: %v", err)
	}

	hints, err := config.LoadHints(path)
	if err != nil {
		t.Fatalf("load hints: %v", err)
	}

	// Capture times parse in local time, so windows must too. A shot taken
	// shortly after local midnight on the first day falls outside the window
	// if the bare dates are read as UTC in any zone east of Greenwich.
	justAfterMidnight := time.Date(2021, 6, 1, 0, 30, 0, 0, time.Local)
	if !hints[0].Contains(justAfterMidnight) {
		t.Fatal("window must include local times on its first day")
	}
	lastEvening := time.Date(2021, 6, 10, 23, 30, 0, 0, time.Local)
	if !hints[0].Contains(lastEvening) {
		t.Fatal("window must include local times on its last day")
	}
}

func TestLoadHintsRejectsInvertedWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	content := `{"hints": [{"from": "2020-06-01", "to": "2020-01-01", "lat": 1, "lon": 1}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write hints: %v", err)
	}
	if _, err := config.LoadHints(path); err == nil {
		t.Fatal("expected error for inverted window")
	}
}

func TestLoadHintsEmptyPath(t *testing.T) {
	hints, err := config.LoadHints("")
	if err != nil || hints != nil {
		t.Fatalf("empty path should be a no-op, got %v, %v", hints, err)
	}
}
