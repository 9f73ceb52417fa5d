package metadata_test

import (
	"testing"

	"exifheal/internal/metadata"
)

func TestMergeCombinesByPath(t *testing.T) {
	times := []metadata.TimeProposal{
		{
			Path:       "/photos/trip/IMG_001.jpg",
			Primary:    "2020:06:01 10:30:00",
			Create:     "2020:06:01 10:30:00",
			Confidence: metadata.ConfidenceHigh,
			Source:     metadata.TimeSourceNeighborInterp,
			Reason:     "interpolated",
		},
	}
	coord := &metadata.GPSCoord{Lat: 48.1, Lon: 11.5}
	gps := []metadata.GPSProposal{
		{
			Path:       "/photos/trip/IMG_001.jpg",
			Coord:      coord,
			Confidence: metadata.ConfidenceMed,
			Source:     metadata.GPSSourceNeighborCopy,
			Reason:     "copied",
		},
		{
			Path:       "/photos/trip/IMG_002.jpg",
			Coord:      &metadata.GPSCoord{Lat: 48.2, Lon: 11.6},
			Confidence: metadata.ConfidenceLow,
			Source:     metadata.GPSSourceDefaultHint,
			HintLabel:  "munich",
		},
	}

	merged := metadata.Merge(times, gps)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged changes, got %d", len(merged))
	}

	first := merged[0]
	if first.Path != "/photos/trip/IMG_001.jpg" {
		t.Fatalf("expected high-confidence change first, got %s", first.Path)
	}
	if !first.HasTimeChange() || !first.HasGPSChange() {
		t.Fatalf("merged change should carry both categories: %+v", first)
	}
	if first.TimeConfidence != metadata.ConfidenceHigh || first.GPSConfidence != metadata.ConfidenceMed {
		t.Fatalf("confidences not preserved: time=%s gps=%s", first.TimeConfidence, first.GPSConfidence)
	}

	second := merged[1]
	if second.HasTimeChange() {
		t.Fatal("GPS-only change should not carry a time proposal")
	}
	if second.TimeSource != "" {
		t.Fatalf("GPS-only change must not claim a time source, got %q", second.TimeSource)
	}
	if second.GPSHintLabel != "munich" {
		t.Fatalf("hint label not preserved: %q", second.GPSHintLabel)
	}
}

func TestMergeDropsEmptyChanges(t *testing.T) {
	gps := []metadata.GPSProposal{
		{Path: "/photos/a.jpg", Confidence: metadata.ConfidenceNone, Source: metadata.GPSSourceNone},
	}
	if merged := metadata.Merge(nil, gps); len(merged) != 0 {
		t.Fatalf("empty change must not survive merge, got %d", len(merged))
	}
}

func TestMergeOrdersByBestConfidence(t *testing.T) {
	times := []metadata.TimeProposal{
		{Path: "/p/low.jpg", Primary: "2020:01:01 00:00:00", Confidence: metadata.ConfidenceLow, Source: metadata.TimeSourceFileMtime},
		{Path: "/p/high.jpg", Primary: "2020:01:01 00:00:00", Confidence: metadata.ConfidenceHigh, Source: metadata.TimeSourceNeighborInterp},
		{Path: "/p/med.jpg", Primary: "2020:01:01 00:00:00", Confidence: metadata.ConfidenceMed, Source: metadata.TimeSourceNeighborCopy},
	}
	merged := metadata.Merge(times, nil)
	var got []string
	for _, c := range merged {
		got = append(got, c.Path)
	}
	want := []string{"/p/high.jpg", "/p/med.jpg", "/p/low.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMergePreservesSkipped(t *testing.T) {
	gps := []metadata.GPSProposal{
		{
			Path:               "/p/jump.jpg",
			Coord:              &metadata.GPSCoord{Lat: 0, Lon: 0},
			Confidence:         metadata.ConfidenceHigh,
			Source:             metadata.GPSSourceNeighborCopy,
			CentroidDistanceKM: 812.4,
			Skipped:            true,
			SkipReason:         "GPS jump 812.4km > 50km",
		},
	}
	merged := metadata.Merge(nil, gps)
	if len(merged) != 1 {
		t.Fatalf("skipped change must stay visible for audit, got %d changes", len(merged))
	}
	if !merged[0].Skipped || merged[0].SkipReason == "" {
		t.Fatalf("skip flags lost in merge: %+v", merged[0])
	}
}
