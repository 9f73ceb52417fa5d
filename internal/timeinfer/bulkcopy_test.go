package timeinfer_test

import (
	"fmt"
	"testing"
	"time"

	"exifheal/internal/metadata"
	"exifheal/internal/timeinfer"
)

func recordsWithMtimes(mtimes []time.Time) []*metadata.FileRecord {
	records := make([]*metadata.FileRecord, len(mtimes))
	for i, mt := range mtimes {
		records[i] = &metadata.FileRecord{
			Filename:  fmt.Sprintf("IMG_%04d.jpg", i),
			FileMtime: mt,
		}
	}
	return records
}

func TestDetectBulkCopy(t *testing.T) {
	base := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nine of ten clustered", func(t *testing.T) {
		mtimes := make([]time.Time, 0, 10)
		for i := 0; i < 9; i++ {
			mtimes = append(mtimes, base.Add(time.Duration(i*5)*time.Second))
		}
		mtimes = append(mtimes, base.Add(48*time.Hour))
		if !timeinfer.DetectBulkCopy(recordsWithMtimes(mtimes)) {
			t.Fatal("9/10 files within 60s should classify as bulk-copied")
		}
	})

	t.Run("five of ten clustered", func(t *testing.T) {
		mtimes := make([]time.Time, 0, 10)
		for i := 0; i < 5; i++ {
			mtimes = append(mtimes, base.Add(time.Duration(i)*time.Second))
		}
		for i := 0; i < 5; i++ {
			mtimes = append(mtimes, base.Add(time.Duration(i+1)*time.Hour))
		}
		if timeinfer.DetectBulkCopy(recordsWithMtimes(mtimes)) {
			t.Fatal("5/10 files clustered must not classify as bulk-copied")
		}
	})

	t.Run("fewer than three files never classified", func(t *testing.T) {
		mtimes := []time.Time{base, base}
		if timeinfer.DetectBulkCopy(recordsWithMtimes(mtimes)) {
			t.Fatal("two files sharing an mtime must not classify as bulk-copied")
		}
	})

	t.Run("chained cluster spanning more than sixty seconds", func(t *testing.T) {
		// Consecutive gaps of 45s chain into one cluster even though the
		// extremes are minutes apart.
		mtimes := make([]time.Time, 0, 10)
		for i := 0; i < 10; i++ {
			mtimes = append(mtimes, base.Add(time.Duration(i*45)*time.Second))
		}
		if !timeinfer.DetectBulkCopy(recordsWithMtimes(mtimes)) {
			t.Fatal("chained 45s gaps should form a single cluster")
		}
	})
}
