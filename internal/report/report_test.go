package report_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"exifheal/internal/metadata"
	"exifheal/internal/report"
	"exifheal/internal/testsupport"
)

func TestBuildEntry(t *testing.T) {
	capture := time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC)
	record := testsupport.NewRecord("/photos/trip/IMG_001.jpg",
		testsupport.WithCaptureTime(capture),
	)
	change := &metadata.ProposedChange{
		Path:                  "/photos/trip/IMG_001.jpg",
		NewDateTimeOriginal:   "2021:06:01 10:30:00",
		NewCreateDate:         "2021:06:01 10:30:00",
		TimeConfidence:        metadata.ConfidenceHigh,
		TimeSource:            metadata.TimeSourceNeighborInterp,
		ReasonTime:            "interpolated between a.jpg and b.jpg (pos 1/2, same camera)",
		NeighborsTime:         []string{"/photos/trip/a.jpg", "/photos/trip/b.jpg"},
		NewGPS:                &metadata.GPSCoord{Lat: 48.1351, Lon: 11.582},
		GPSConfidence:         metadata.ConfidenceMed,
		GPSSource:             metadata.GPSSourceNeighborCopy,
		ReasonGPS:             "copied from a.jpg (gap=120s)",
		NeighborsGPS:          []string{"/photos/trip/a.jpg"},
		TimeMtimeDriftYears:   0.1234,
		GPSCentroidDistanceKM: 1.006,
	}

	entry := report.BuildEntry(record, change)
	if entry.Action != "set_both" {
		t.Fatalf("action = %q", entry.Action)
	}
	if entry.Old.DateTimeOriginal == nil || *entry.Old.DateTimeOriginal != "2021:06:01 10:00:00" {
		t.Fatalf("old DateTimeOriginal = %v", entry.Old.DateTimeOriginal)
	}
	if entry.New.GPSLatitude == nil || *entry.New.GPSLatitude != 48.1351 {
		t.Fatalf("new GPSLatitude = %v", entry.New.GPSLatitude)
	}
	if entry.New.ModifyDate != nil {
		t.Fatalf("absent ModifyDate should be null, got %v", entry.New.ModifyDate)
	}
	if len(entry.NeighborsUsed) != 3 {
		t.Fatalf("neighbors = %v", entry.NeighborsUsed)
	}
	if entry.MtimeDriftYears != 0.12 {
		t.Fatalf("drift not rounded: %v", entry.MtimeDriftYears)
	}
	if entry.GPSCentroidDistanceKM != 1.01 {
		t.Fatalf("centroid distance not rounded: %v", entry.GPSCentroidDistanceKM)
	}
	if entry.Gated || entry.Skipped {
		t.Fatalf("clean change must not carry gate or skip flags: %+v", entry)
	}
}

func TestBuildEntryGatedAndSkipped(t *testing.T) {
	record := testsupport.NewRecord("/photos/a.jpg")
	change := &metadata.ProposedChange{
		Path:                "/photos/a.jpg",
		NewDateTimeOriginal: "2021:06:01 10:00:00",
		TimeConfidence:      metadata.ConfidenceLow,
		TimeSource:          metadata.TimeSourceFileMtime,
		GatedTime:           true,
		GateReason:          "time confidence low < threshold med",
		NewGPS:              &metadata.GPSCoord{Lat: 1, Lon: 1},
		GPSConfidence:       metadata.ConfidenceHigh,
		GPSSource:           metadata.GPSSourceNeighborCopy,
		Skipped:             true,
		SkipReason:          "GPS jump 812.4km > 50km",
	}

	entry := report.BuildEntry(record, change)
	if entry.Action != "skip" {
		t.Fatalf("skipped change action = %q", entry.Action)
	}
	if !entry.Gated || !entry.GatedTime || entry.GatedGPS {
		t.Fatalf("gate flags wrong: %+v", entry)
	}
	if !entry.Skipped || entry.SkipReason == "" {
		t.Fatalf("skip flags wrong: %+v", entry)
	}
}

func TestWriterProducesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")
	writer, err := report.NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	record := testsupport.NewRecord("/photos/a.jpg")
	for i := 0; i < 3; i++ {
		change := testsupport.TimeChange("/photos/a.jpg", "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy)
		if err := writer.WriteChange(record, change); err != nil {
			t.Fatalf("write change: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry report.Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines+1, err)
		}
		if entry.Action != "set_time" {
			t.Fatalf("line %d action = %q", lines+1, entry.Action)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("expected 3 JSONL lines, got %d", lines)
	}
}
