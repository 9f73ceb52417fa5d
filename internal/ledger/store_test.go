package ledger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"exifheal/internal/ledger"
	"exifheal/internal/logging"
	"exifheal/internal/metadata"
	"exifheal/internal/testsupport"
	"exifheal/internal/timeinfer"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestReopenSkipsAppliedSchemaSteps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := ledger.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := ledger.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("reopen against migrated database: %v", err)
	}
	defer second.Close()
	if _, err := second.Stats(context.Background()); err != nil {
		t.Fatalf("stats after reopen: %v", err)
	}
}

func TestSaveAndListPending(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	records := []*metadata.FileRecord{
		testsupport.NewRecord("/photos/trip/IMG_001.jpg"),
		testsupport.NewRecord("/photos/trip/IMG_002.jpg"),
	}
	changes := map[string]*metadata.ProposedChange{
		"/photos/trip/IMG_001.jpg": testsupport.TimeChange(
			"/photos/trip/IMG_001.jpg", "2021:06:01 10:00:00",
			metadata.ConfidenceHigh, metadata.TimeSourceNeighborInterp,
		),
	}

	if err := store.SaveDirectory(ctx, "/photos/trip", records, changes, false, "run-1", 1); err != nil {
		t.Fatalf("save directory: %v", err)
	}

	pending, err := store.PendingChanges(ctx, "", false)
	if err != nil {
		t.Fatalf("pending changes: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending change, got %d", len(pending))
	}
	item := pending[0]
	if item.Path != "/photos/trip/IMG_001.jpg" {
		t.Fatalf("path = %s", item.Path)
	}
	if item.Change.NewDateTimeOriginal != "2021:06:01 10:00:00" {
		t.Fatalf("proposal lost in round-trip: %+v", item.Change)
	}
	if item.Change.TimeConfidence != metadata.ConfidenceHigh {
		t.Fatalf("confidence = %s", item.Change.TimeConfidence)
	}
}

func TestRootPrefixScoping(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	save := func(dir, path string) {
		records := []*metadata.FileRecord{testsupport.NewRecord(path)}
		changes := map[string]*metadata.ProposedChange{
			path: testsupport.TimeChange(path, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy),
		}
		if err := store.SaveDirectory(ctx, dir, records, changes, false, "run-1", 1); err != nil {
			t.Fatalf("save directory: %v", err)
		}
	}
	save("/photos/Albums", "/photos/Albums/a.jpg")
	save("/photos/Albums2", "/photos/Albums2/b.jpg")

	pending, err := store.PendingChanges(ctx, "/photos/Albums", false)
	if err != nil {
		t.Fatalf("pending changes: %v", err)
	}
	if len(pending) != 1 || pending[0].Path != "/photos/Albums/a.jpg" {
		t.Fatalf("root scoping must not match sibling prefixes: %+v", pending)
	}
}

func TestRescanSupersedesProposalAndAppliedMark(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	path := "/photos/trip/IMG_001.jpg"

	records := []*metadata.FileRecord{testsupport.NewRecord(path)}
	changes := map[string]*metadata.ProposedChange{
		path: testsupport.TimeChange(path, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy),
	}
	if err := store.SaveDirectory(ctx, "/photos/trip", records, changes, false, "run-1", 1); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.MarkApplied(ctx, []string{path}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}

	pending, err := store.PendingChanges(ctx, "", false)
	if err != nil {
		t.Fatalf("pending after apply: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("applied change still pending: %+v", pending)
	}

	changes[path] = testsupport.TimeChange(path, "2021:06:01 11:00:00", metadata.ConfidenceHigh, metadata.TimeSourceNeighborInterp)
	if err := store.SaveDirectory(ctx, "/photos/trip", records, changes, false, "run-2", 1); err != nil {
		t.Fatalf("second save: %v", err)
	}

	pending, err = store.PendingChanges(ctx, "", false)
	if err != nil {
		t.Fatalf("pending after rescan: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("rescan must clear the applied mark, got %d pending", len(pending))
	}
	if pending[0].Change.NewDateTimeOriginal != "2021:06:01 11:00:00" {
		t.Fatalf("rescan must supersede the old proposal: %+v", pending[0].Change)
	}
}

func TestFreshnessVerification(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	freshPath := filepath.Join(dir, "fresh.jpg")
	stalePath := filepath.Join(dir, "stale.jpg")
	for _, p := range []string{freshPath, stalePath} {
		if err := os.WriteFile(p, []byte("image data"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	buildRecord := func(path string) *metadata.FileRecord {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat fixture: %v", err)
		}
		return testsupport.NewRecord(path,
			testsupport.WithMtime(info.ModTime()),
			func(r *metadata.FileRecord) { r.FileSize = info.Size() },
		)
	}
	records := []*metadata.FileRecord{buildRecord(freshPath), buildRecord(stalePath)}
	missingPath := filepath.Join(dir, "missing.jpg")
	records = append(records, testsupport.NewRecord(missingPath))

	changes := map[string]*metadata.ProposedChange{}
	for _, r := range records {
		changes[r.Path] = testsupport.TimeChange(r.Path, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy)
	}
	if err := store.SaveDirectory(ctx, dir, records, changes, false, "run-1", 1); err != nil {
		t.Fatalf("save directory: %v", err)
	}

	// Modify one file after the scan.
	if err := os.WriteFile(stalePath, []byte("image data, edited"), 0o644); err != nil {
		t.Fatalf("touch stale file: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stalePath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	pending, err := store.PendingChanges(ctx, "", true)
	if err != nil {
		t.Fatalf("pending changes: %v", err)
	}
	staleness := make(map[string]bool, len(pending))
	for _, item := range pending {
		staleness[item.Path] = item.Stale
	}
	if staleness[freshPath] {
		t.Fatal("unmodified file flagged stale")
	}
	if !staleness[stalePath] {
		t.Fatal("modified file not flagged stale")
	}
	if !staleness[missingPath] {
		t.Fatal("missing file not flagged stale")
	}
}

func TestBulkCopiedFlag(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	records := []*metadata.FileRecord{testsupport.NewRecord("/photos/import/a.jpg")}
	if err := store.SaveDirectory(ctx, "/photos/import", records, nil, true, "run-1", timeinfer.BulkCopyVersion); err != nil {
		t.Fatalf("save directory: %v", err)
	}

	flagged, version, err := store.BulkCopied(ctx, "/photos/import")
	if err != nil {
		t.Fatalf("bulk copied: %v", err)
	}
	if !flagged {
		t.Fatal("bulk-copy flag not persisted")
	}
	if version != timeinfer.BulkCopyVersion {
		t.Fatalf("dir flag must carry the classifier version, not a run identifier: got %d", version)
	}
	flagged, _, err = store.BulkCopied(ctx, "/photos/other")
	if err != nil || flagged {
		t.Fatalf("unknown directory should report false, got %v, %v", flagged, err)
	}
}

func TestScanRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, runUUID, err := store.StartRun(ctx, "/photos")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if runUUID == "" {
		t.Fatal("run UUID empty")
	}
	if err := store.FinishRun(ctx, id, 42, 7); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.UUID != runUUID || run.FileCount != 42 || run.ChangesProposed != 7 {
		t.Fatalf("run round-trip mismatch: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Fatal("finished run missing finish time")
	}
}

func TestStats(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	pathA := "/photos/x/a.jpg"
	pathB := "/photos/x/b.jpg"
	records := []*metadata.FileRecord{testsupport.NewRecord(pathA), testsupport.NewRecord(pathB)}
	changes := map[string]*metadata.ProposedChange{
		pathA: testsupport.TimeChange(pathA, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy),
		pathB: testsupport.TimeChange(pathB, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy),
	}
	if err := store.SaveDirectory(ctx, "/photos/x", records, changes, true, "run-1", 1); err != nil {
		t.Fatalf("save directory: %v", err)
	}
	if err := store.MarkApplied(ctx, []string{pathA}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 2 || stats.Pending != 1 || stats.Applied != 1 || stats.BulkCopiedDirs != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunLockExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	lock, err := ledger.AcquireRunLock(cfg)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	if _, err := ledger.AcquireRunLock(cfg); err != ledger.ErrLocked {
		t.Fatalf("second acquire should fail with ErrLocked, got %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	relock, err := ledger.AcquireRunLock(cfg)
	if err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
	_ = relock.Release()
}
