// Package scanner walks a photo tree, reads metadata through exiftool, runs
// the time and GPS inference passes per directory, and records proposals in
// the ledger and the JSONL report.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	"exifheal/internal/config"
	"exifheal/internal/gate"
	"exifheal/internal/gpsinfer"
	"exifheal/internal/ledger"
	"exifheal/internal/metadata"
	"exifheal/internal/report"
	"exifheal/internal/services/exiftool"
	"exifheal/internal/timeinfer"
)

// Scanner runs scan passes. Construct with New; one Scanner serves any
// number of sequential Scan calls.
type Scanner struct {
	cfg      *config.Config
	client   *exiftool.Client
	store    *ledger.Store
	hints    []metadata.GPSHint
	excludes []*regexp.Regexp
	logger   *slog.Logger
}

func New(cfg *config.Config, client *exiftool.Client, store *ledger.Store, hints []metadata.GPSHint, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:      cfg,
		client:   client,
		store:    store,
		hints:    hints,
		excludes: compileExcludes(cfg.Scan.ExcludeGlobs),
		logger:   logger,
	}
}

// Options are the per-run scan parameters.
type Options struct {
	Root      string
	Recursive bool
	// Force re-evaluates files that already carry the target metadata.
	Force bool
	// OnlyMissingTime and OnlyMissingGPS skip directories where nothing is
	// missing in the respective category, and suppress the other pass.
	OnlyMissingTime bool
	OnlyMissingGPS  bool
	// Limit caps the number of proposed changes across the whole run.
	// Zero means unlimited.
	Limit int
}

// Result is what a scan run produced: the run identity for the ledger, the
// aggregate counters, and every change that was recorded, strongest first
// within each directory.
type Result struct {
	RunUUID string
	Summary report.Summary
	Changes []*metadata.ProposedChange
}

// Scan executes one full scan run. Proposals are persisted per directory, so
// an interrupted run leaves completed directories usable. When rep is
// non-nil every recorded change is also appended to the JSONL report.
func (s *Scanner) Scan(ctx context.Context, opts Options, rep *report.Writer) (*Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	runID, runUUID, err := s.store.StartRun(ctx, root)
	if err != nil {
		return nil, err
	}

	dirs, err := directories(root, opts.Recursive, s.excludes)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan started",
		slog.String("run", runUUID),
		slog.String("root", root),
		slog.Int("directories", len(dirs)))

	result := &Result{RunUUID: runUUID}
	limitReached := false
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.scanDirectory(ctx, dir, opts, runUUID, rep, result, &limitReached); err != nil {
			return nil, err
		}
		if limitReached {
			s.logger.Info("change limit reached, stopping scan", slog.Int("limit", opts.Limit))
			break
		}
	}

	if err := s.store.FinishRun(ctx, runID, int64(result.Summary.FilesScanned), int64(len(result.Changes))); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scanner) scanDirectory(
	ctx context.Context,
	dir string,
	opts Options,
	runUUID string,
	rep *report.Writer,
	result *Result,
	limitReached *bool,
) error {
	raws, err := s.client.ReadDirectory(ctx, dir, s.cfg.Scan.Extensions)
	if err != nil {
		s.logger.Warn("skipping unreadable directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return nil
	}
	if len(raws) == 0 {
		return nil
	}

	records := make([]*metadata.FileRecord, 0, len(raws))
	byPath := make(map[string]*metadata.FileRecord, len(raws))
	for _, raw := range raws {
		record := buildRecord(raw, s.logger)
		if record == nil {
			continue
		}
		records = append(records, record)
		byPath[record.Path] = record
	}
	if len(records) == 0 {
		return nil
	}

	summary := report.Summary{DirsScanned: 1, FilesScanned: len(records)}
	for _, record := range records {
		if !record.HasExifTime() {
			summary.FilesMissingTime++
		}
		if !record.HasGPS() {
			summary.FilesMissingGPS++
		}
	}
	defer func() { result.Summary.Add(summary) }()

	if opts.OnlyMissingTime && summary.FilesMissingTime == 0 {
		return nil
	}
	if opts.OnlyMissingGPS && summary.FilesMissingGPS == 0 {
		return nil
	}

	bulkCopied := timeinfer.DetectBulkCopy(records)
	if bulkCopied {
		summary.DirsBulkCopied = 1
		s.logger.Info("bulk-copied directory, mtimes inadmissible", slog.String("directory", dir))
	}

	var timeProposals []metadata.TimeProposal
	if !opts.OnlyMissingGPS {
		timeProposals = timeinfer.Infer(records, timeinfer.Options{
			MaxGap:   time.Duration(s.cfg.Scan.MaxTimeGap) * time.Second,
			UseMtime: s.cfg.Scan.UseMtime && !bulkCopied,
			Force:    opts.Force,
		}, s.logger)
		// Inferred times become provisional capture times so the GPS pass
		// can use them as search keys.
		for i := range timeProposals {
			tp := &timeProposals[i]
			record, ok := byPath[tp.Path]
			if !ok {
				continue
			}
			if inferred := parseExifTime(tp.Primary); inferred != nil {
				record.CaptureTime = inferred
				record.CaptureTimeSource = tp.Source
			}
		}
	}

	var gpsProposals []metadata.GPSProposal
	if !opts.OnlyMissingTime {
		gpsProposals = gpsinfer.Infer(records, gpsinfer.Options{
			MaxGap:        time.Duration(s.cfg.Scan.MaxTimeGap) * time.Second,
			MaxDistanceKM: s.cfg.GPS.MaxDistanceKM,
			AllowJumps:    s.cfg.GPS.AllowJumps,
			DefaultGPS:    s.cfg.DefaultCoord(),
			Hints:         s.hints,
			Force:         opts.Force,
		}, s.logger)
	}

	changes := metadata.Merge(timeProposals, gpsProposals)
	actionable := gate.Apply(changes, gate.Thresholds{
		MinTime: s.cfg.MinTimeThreshold(),
		MinGPS:  s.cfg.MinGPSThreshold(),
	})

	if opts.Limit > 0 {
		remaining := opts.Limit - len(result.Changes)
		if len(changes) >= remaining {
			changes = changes[:remaining]
			*limitReached = true
		}
	}

	changeMap := make(map[string]*metadata.ProposedChange, len(changes))
	for _, change := range changes {
		changeMap[change.Path] = change
		switch {
		case change.Skipped:
			summary.FilesSkippedGuardrails++
		case change.Gated():
			summary.FilesGated++
		}
		if change.HasTimeChange() {
			summary.FilesProposedTime++
		}
		if change.HasGPSChange() {
			summary.FilesProposedGPS++
		}
	}

	if err := s.store.SaveDirectory(ctx, dir, records, changeMap, bulkCopied, runUUID, timeinfer.BulkCopyVersion); err != nil {
		return fmt.Errorf("save directory %s: %w", dir, err)
	}

	if rep != nil {
		for _, change := range changes {
			if err := rep.WriteChange(byPath[change.Path], change); err != nil {
				return fmt.Errorf("write report entry: %w", err)
			}
		}
	}

	result.Changes = append(result.Changes, changes...)
	s.logger.Debug("directory scanned",
		slog.String("directory", dir),
		slog.Int("files", len(records)),
		slog.Int("changes", len(changes)),
		slog.Int("actionable", actionable))
	return nil
}
