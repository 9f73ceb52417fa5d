// Package ledger persists scan results and proposed changes in SQLite.
// Proposals survive between the scan and apply stages through the ledger;
// freshness is verified optimistically at read time rather than by locking
// the media files.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"exifheal/internal/config"
	"exifheal/internal/metadata"
)

// freshnessEpsilonNS tolerates sub-millisecond mtime jitter across
// filesystems that round timestamps differently.
const freshnessEpsilonNS = int64(time.Millisecond)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, logger: logger}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveDirectory records one scanned directory in a single transaction:
// every file snapshot, the proposals keyed by path, and the bulk-copy flag.
// Re-scanning a path supersedes its previous proposal and clears the
// applied marker. scanVersion identifies the run that produced the file
// rows; detectorVersion is the bulk-copy classifier version so a later
// scan can tell whether the flag predates a heuristic change.
func (s *Store) SaveDirectory(
	ctx context.Context,
	dir string,
	records []*metadata.FileRecord,
	changes map[string]*metadata.ProposedChange,
	bulkCopied bool,
	scanVersion string,
	detectorVersion int,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, record := range records {
		metadataJSON, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", record.Path, err)
		}

		var proposedJSON, confTime, confGPS any
		if change, ok := changes[record.Path]; ok && change.HasAnyChange() {
			data, err := json.Marshal(change)
			if err != nil {
				return fmt.Errorf("marshal change %s: %w", record.Path, err)
			}
			proposedJSON = string(data)
			confTime = string(change.TimeConfidence)
			confGPS = string(change.GPSConfidence)
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO files (
                path, directory, filename, extension, mtime_ns, size,
                metadata_json, scan_version, scanned_at,
                proposed_json, confidence_time, confidence_gps, applied, applied_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL)
            ON CONFLICT(path) DO UPDATE SET
                directory = excluded.directory,
                filename = excluded.filename,
                extension = excluded.extension,
                mtime_ns = excluded.mtime_ns,
                size = excluded.size,
                metadata_json = excluded.metadata_json,
                scan_version = excluded.scan_version,
                scanned_at = excluded.scanned_at,
                proposed_json = excluded.proposed_json,
                confidence_time = excluded.confidence_time,
                confidence_gps = excluded.confidence_gps,
                applied = 0,
                applied_at = NULL`,
			record.Path,
			record.Directory,
			record.Filename,
			record.Extension,
			record.FileMtime.UnixNano(),
			record.FileSize,
			string(metadataJSON),
			scanVersion,
			now,
			proposedJSON,
			confTime,
			confGPS,
		)
		if err != nil {
			return fmt.Errorf("upsert file %s: %w", record.Path, err)
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO dir_flags (directory, bulk_copied, scan_version)
         VALUES (?, ?, ?)
         ON CONFLICT(directory) DO UPDATE SET
             bulk_copied = excluded.bulk_copied,
             scan_version = excluded.scan_version`,
		dir,
		boolToInt(bulkCopied),
		detectorVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert dir flags %s: %w", dir, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit directory %s: %w", dir, err)
	}
	return nil
}

// PendingChanges returns unapplied proposals, optionally scoped to a root
// directory. With verifyFresh set, each file is stat'ed and proposals whose
// files changed since the scan are flagged stale. Rows whose stored proposal
// no longer parses are skipped with a warning rather than failing the batch.
func (s *Store) PendingChanges(ctx context.Context, root string, verifyFresh bool) ([]PendingChange, error) {
	query := `SELECT path, directory, mtime_ns, size, proposed_json, applied
        FROM files
        WHERE proposed_json IS NOT NULL AND applied = 0
        ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pending changes: %w", err)
	}
	defer rows.Close()

	var pending []PendingChange
	for rows.Next() {
		var (
			item         PendingChange
			proposedJSON string
			applied      int
		)
		if err := rows.Scan(&item.Path, &item.Directory, &item.MtimeNS, &item.Size, &proposedJSON, &applied); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		item.Applied = applied != 0

		if root != "" && !underRoot(item.Path, root) {
			continue
		}

		var change metadata.ProposedChange
		if err := json.Unmarshal([]byte(proposedJSON), &change); err != nil {
			s.logger.Warn("skipping ledger row with unreadable proposal",
				slog.String("path", item.Path),
				slog.String("error", err.Error()))
			continue
		}
		item.Change = &change

		if verifyFresh {
			item.Stale = s.isStale(&item)
		}
		pending = append(pending, item)
	}
	return pending, rows.Err()
}

// isStale compares the stored snapshot against the file on disk. A missing
// file counts as stale.
func (s *Store) isStale(item *PendingChange) bool {
	info, err := os.Stat(item.Path)
	if err != nil {
		s.logger.Warn("pending file missing or unreadable",
			slog.String("path", item.Path),
			slog.String("error", err.Error()))
		return true
	}
	if info.Size() != item.Size {
		return true
	}
	drift := info.ModTime().UnixNano() - item.MtimeNS
	if drift < 0 {
		drift = -drift
	}
	return drift > freshnessEpsilonNS
}

// MarkApplied records a successful write for each path.
func (s *Store) MarkApplied(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, path := range paths {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE files SET applied = 1, applied_at = ? WHERE path = ?`,
			now,
			path,
		); err != nil {
			return fmt.Errorf("mark applied %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit applied marks: %w", err)
	}
	return nil
}

// BulkCopied reports whether a directory was flagged as a bulk copy during
// its most recent scan, along with the classifier version that made the
// call. An unknown directory reports false with version zero.
func (s *Store) BulkCopied(ctx context.Context, dir string) (bool, int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT bulk_copied, scan_version FROM dir_flags WHERE directory = ?`, dir)
	var flag, version int
	if err := row.Scan(&flag, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("query dir flags: %w", err)
	}
	return flag != 0, version, nil
}

// StartRun records the beginning of a scan and returns its row ID and UUID.
func (s *Store) StartRun(ctx context.Context, root string) (int64, string, error) {
	runUUID := uuid.NewString()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scan_runs (run_uuid, root, started_at) VALUES (?, ?, ?)`,
		runUUID,
		root,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, "", fmt.Errorf("insert scan run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("last insert id: %w", err)
	}
	return id, runUUID, nil
}

// FinishRun closes out a scan run with its final counters.
func (s *Store) FinishRun(ctx context.Context, id int64, fileCount, changesProposed int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE scan_runs SET finished_at = ?, file_count = ?, changes_proposed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		fileCount,
		changesProposed,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish scan run: %w", err)
	}
	return nil
}

// Runs returns the most recent scan runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_uuid, root, started_at, finished_at, file_count, changes_proposed
         FROM scan_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var (
			run         ScanRun
			startedRaw  string
			finishedRaw sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.UUID, &run.Root, &startedRaw, &finishedRaw, &run.FileCount, &run.ChangesProposed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			run.StartedAt = started
		}
		if finishedRaw.Valid {
			if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
				run.FinishedAt = &finished
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats returns aggregate counts for status output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM files`)
	if err := row.Scan(&stats.TotalFiles); err != nil {
		return stats, fmt.Errorf("count files: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM files WHERE proposed_json IS NOT NULL AND applied = 0`)
	if err := row.Scan(&stats.Pending); err != nil {
		return stats, fmt.Errorf("count pending: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM files WHERE applied = 1`)
	if err := row.Scan(&stats.Applied); err != nil {
		return stats, fmt.Errorf("count applied: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM dir_flags WHERE bulk_copied = 1`)
	if err := row.Scan(&stats.BulkCopiedDirs); err != nil {
		return stats, fmt.Errorf("count bulk-copied dirs: %w", err)
	}
	return stats, nil
}

// underRoot reports whether path is the root itself or strictly inside it.
// The separator is appended before comparing so "/photos/Albums" does not
// claim "/photos/Albums2".
func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	prefix := root
	if prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return len(path) > len(prefix) && path[:len(prefix)] == prefix
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
