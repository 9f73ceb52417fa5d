package metadata_test

import (
	"testing"

	"exifheal/internal/metadata"
)

func TestConfidenceTotalOrder(t *testing.T) {
	ordered := []metadata.Confidence{
		metadata.ConfidenceNone,
		metadata.ConfidenceLow,
		metadata.ConfidenceMed,
		metadata.ConfidenceHigh,
	}
	for i, lower := range ordered {
		for j, higher := range ordered {
			wantAtLeast := i >= j
			if got := lower.AtLeast(higher); got != wantAtLeast {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", lower, higher, got, wantAtLeast)
			}
			wantBelow := i < j
			if got := lower.Below(higher); got != wantBelow {
				t.Errorf("%s.Below(%s) = %v, want %v", lower, higher, got, wantBelow)
			}
		}
	}
}

func TestConfidenceRankUnknown(t *testing.T) {
	if got := metadata.Confidence("bogus").Rank(); got != -1 {
		t.Fatalf("Rank for unknown confidence = %d, want -1", got)
	}
}

func TestParseConfidence(t *testing.T) {
	cases := []struct {
		input   string
		want    metadata.Confidence
		wantErr bool
	}{
		{input: "high", want: metadata.ConfidenceHigh},
		{input: " MED ", want: metadata.ConfidenceMed},
		{input: "low", want: metadata.ConfidenceLow},
		{input: "none", want: metadata.ConfidenceNone},
		{input: "medium", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := metadata.ParseConfidence(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseConfidence(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseConfidence(%q) failed: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseConfidence(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestMaxConfidence(t *testing.T) {
	if got := metadata.MaxConfidence(metadata.ConfidenceLow, metadata.ConfidenceHigh); got != metadata.ConfidenceHigh {
		t.Fatalf("MaxConfidence(low, high) = %s", got)
	}
	if got := metadata.MaxConfidence(metadata.ConfidenceMed, metadata.ConfidenceNone); got != metadata.ConfidenceMed {
		t.Fatalf("MaxConfidence(med, none) = %s", got)
	}
}
