package timeinfer_test

import (
	"testing"
	"time"

	"exifheal/internal/metadata"
	"exifheal/internal/timeinfer"
)

func TestParseFilenameTime(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     string // "2006-01-02 15:04:05", empty for no match
		hasTime  bool
	}{
		{name: "messenger received", filename: "received_20190315_4821.jpeg", want: "2019-03-15 00:00:00"},
		{name: "android camera", filename: "IMG_20200601_103045.jpg", want: "2020-06-01 10:30:45", hasTime: true},
		{name: "pixel video", filename: "PXL_20220814_191205.mp4", want: "2022-08-14 19:12:05", hasTime: true},
		{name: "bare timestamp", filename: "20180102_080910.jpg", want: "2018-01-02 08:09:10", hasTime: true},
		{name: "whatsapp", filename: "IMG-20170420-WA0001.jpg", want: "2017-04-20 00:00:00"},
		{name: "screenshot", filename: "Screenshot_20210505-121314.png", want: "2021-05-05 12:13:14", hasTime: true},
		{name: "punctuated", filename: "2016-09-10 14.25.36.jpg", want: "2016-09-10 14:25:36", hasTime: true},
		{name: "punctuated underscore", filename: "2016-09-10_14.25.36.jpg", want: "2016-09-10 14:25:36", hasTime: true},
		{name: "no pattern", filename: "holiday.jpg"},
		{name: "year too old", filename: "IMG_19810601_103045.jpg"},
		{name: "year too new", filename: "IMG_20410601_103045.jpg"},
		{name: "bad month", filename: "IMG_20201301_103045.jpg"},
		{name: "bad hour", filename: "IMG_20200601_250000.jpg"},
		{name: "impossible day", filename: "IMG_20190230_103045.jpg"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, hasTime := timeinfer.ParseFilenameTime(tc.filename)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("expected no match, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected a match for %q", tc.filename)
			}
			want, err := time.Parse("2006-01-02 15:04:05", tc.want)
			if err != nil {
				t.Fatalf("bad case: %v", err)
			}
			if !got.Equal(want.UTC()) {
				t.Fatalf("parsed %v, want %v", got, want)
			}
			if hasTime != tc.hasTime {
				t.Fatalf("hasTime = %v, want %v", hasTime, tc.hasTime)
			}
		})
	}
}

func TestResolveCaptureTimePriority(t *testing.T) {
	dto := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)
	create := time.Date(2020, 6, 1, 11, 0, 0, 0, time.UTC)
	modify := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	xmp := time.Date(2020, 6, 1, 13, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		record     metadata.FileRecord
		wantSource metadata.TimeSource
		wantTime   *time.Time
	}{
		{
			name:       "primary wins over everything",
			record:     metadata.FileRecord{Filename: "IMG_20200601_103045.jpg", DateTimeOriginal: &dto, CreateDate: &create, ModifyDate: &modify, XMPDateCreated: &xmp},
			wantSource: metadata.TimeSourceExifPrimary,
			wantTime:   &dto,
		},
		{
			name:       "create beats modify",
			record:     metadata.FileRecord{CreateDate: &create, ModifyDate: &modify},
			wantSource: metadata.TimeSourceExifCreate,
			wantTime:   &create,
		},
		{
			name:       "modify beats xmp",
			record:     metadata.FileRecord{ModifyDate: &modify, XMPDateCreated: &xmp},
			wantSource: metadata.TimeSourceExifModify,
			wantTime:   &modify,
		},
		{
			name:       "xmp beats filename",
			record:     metadata.FileRecord{Filename: "IMG_20200601_103045.jpg", XMPDateCreated: &xmp},
			wantSource: metadata.TimeSourceXMPCreated,
			wantTime:   &xmp,
		},
		{
			name:       "filename is last",
			record:     metadata.FileRecord{Filename: "IMG_20200601_103045.jpg"},
			wantSource: metadata.TimeSourceFilename,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.record
			timeinfer.ResolveCaptureTime(&rec)
			if rec.CaptureTimeSource != tc.wantSource {
				t.Fatalf("source = %s, want %s", rec.CaptureTimeSource, tc.wantSource)
			}
			if tc.wantTime != nil && (rec.CaptureTime == nil || !rec.CaptureTime.Equal(*tc.wantTime)) {
				t.Fatalf("capture time = %v, want %v", rec.CaptureTime, tc.wantTime)
			}
		})
	}
}

func TestResolveCaptureTimeNoEvidence(t *testing.T) {
	rec := metadata.FileRecord{Filename: "holiday.jpg", FileMtime: time.Now()}
	timeinfer.ResolveCaptureTime(&rec)
	if rec.CaptureTime != nil {
		t.Fatalf("mtime must never be promoted to capture time, got %v", rec.CaptureTime)
	}
	if rec.FilenameTime != nil {
		t.Fatalf("unexpected filename parse: %v", rec.FilenameTime)
	}
}

func TestResolveCaptureTimeStoresFilenameParseIndependently(t *testing.T) {
	dto := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := metadata.FileRecord{Filename: "IMG_20190101_000000.jpg", DateTimeOriginal: &dto}
	timeinfer.ResolveCaptureTime(&rec)
	if rec.CaptureTimeSource != metadata.TimeSourceExifPrimary {
		t.Fatalf("source = %s", rec.CaptureTimeSource)
	}
	if rec.FilenameTime == nil || !rec.FilenameTimeHasTime {
		t.Fatal("filename parse must be stored even when it loses the priority chain")
	}
}
