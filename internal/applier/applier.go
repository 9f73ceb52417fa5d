// Package applier turns pending ledger proposals into actual metadata
// writes. Gating is re-evaluated at apply time from the stored confidences,
// so thresholds changed after a scan take effect without rescanning.
package applier

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"exifheal/internal/backup"
	"exifheal/internal/config"
	"exifheal/internal/ledger"
	"exifheal/internal/metadata"
	"exifheal/internal/services/exiftool"
)

// Options are the per-run apply parameters.
type Options struct {
	Root string
	// Commit performs the writes. Without it the run is a dry run that
	// only reports what would change.
	Commit bool
	// Limit caps the number of files written. Zero means unlimited.
	Limit int
}

// Summary is what an apply run did (or, in a dry run, would have done).
type Summary struct {
	TotalPending int
	Stale        int
	Gated        int
	BackedUp     int
	// Written counts actual writes, or the would-be writes of a dry run.
	Written    int
	NotWritten int
	Errors     int
	DryRun     bool

	// Eligible holds the changes that passed gating, for preview display.
	Eligible []*metadata.ProposedChange
}

// Applier executes apply runs against one ledger.
type Applier struct {
	cfg    *config.Config
	client *exiftool.Client
	store  *ledger.Store
	logger *slog.Logger
}

func New(cfg *config.Config, client *exiftool.Client, store *ledger.Store, logger *slog.Logger) *Applier {
	return &Applier{cfg: cfg, client: client, store: store, logger: logger}
}

// Apply writes eligible pending changes under root. Stale entries (the file
// changed on disk since the scan) and changes below the configured
// confidence thresholds are skipped. Only files exiftool reports as updated
// are marked applied, so a partial failure leaves the rest pending.
func (a *Applier) Apply(ctx context.Context, opts Options) (*Summary, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	summary := &Summary{DryRun: !opts.Commit}

	pending, err := a.store.PendingChanges(ctx, root, true)
	if err != nil {
		return nil, err
	}
	summary.TotalPending = len(pending)

	for _, item := range pending {
		if item.Stale {
			summary.Stale++
			a.logger.Warn("skipping stale proposal, rescan required",
				slog.String("path", item.Path))
			continue
		}
		effective := a.regate(item.Change)
		if effective == nil {
			summary.Gated++
			continue
		}
		summary.Eligible = append(summary.Eligible, effective)
	}

	if opts.Limit > 0 && len(summary.Eligible) > opts.Limit {
		summary.Eligible = summary.Eligible[:opts.Limit]
	}

	if len(summary.Eligible) == 0 {
		return summary, nil
	}

	if !opts.Commit {
		summary.Written = len(summary.Eligible)
		return summary, nil
	}

	if a.cfg.Apply.Backup {
		a.backupOriginals(summary, root)
	}

	writeOpts := exiftool.WriteOptions{
		Provenance: a.cfg.Apply.WriteProvenance,
		XMPMirror:  a.cfg.Apply.XMPMirror,
	}
	batchSize := a.cfg.Apply.BatchSize
	for start := 0; start < len(summary.Eligible); start += batchSize {
		end := min(start+batchSize, len(summary.Eligible))
		batch := summary.Eligible[start:end]

		result, err := a.client.WriteBatch(ctx, batch, writeOpts)
		if err != nil {
			return summary, fmt.Errorf("write batch: %w", err)
		}
		summary.Written += len(result.Written)
		summary.NotWritten += len(result.NotWritten)
		summary.Errors += result.ErrorCount
		for _, path := range result.NotWritten {
			a.logger.Warn("exiftool did not update file", slog.String("path", path))
		}

		if err := a.store.MarkApplied(ctx, result.Written); err != nil {
			return summary, fmt.Errorf("mark applied: %w", err)
		}
	}

	a.logger.Info("apply finished",
		slog.Int("written", summary.Written),
		slog.Int("not_written", summary.NotWritten),
		slog.Int("errors", summary.Errors))
	return summary, nil
}

// regate re-applies the confidence thresholds to a stored change. The
// stored confidences are authoritative; the scan-time gating flags are
// discarded. Returns nil when nothing survives.
func (a *Applier) regate(change *metadata.ProposedChange) *metadata.ProposedChange {
	if change.Skipped && !change.HasTimeChange() {
		return nil
	}

	effective := *change
	effective.GatedTime = change.HasTimeChange() && change.TimeConfidence.Below(a.cfg.MinTimeThreshold())
	effective.GatedGPS = change.HasGPSChange() && change.GPSConfidence.Below(a.cfg.MinGPSThreshold())
	effective.GateReason = ""
	if effective.Gated() {
		return nil
	}
	return &effective
}

func (a *Applier) backupOriginals(summary *Summary, root string) {
	manager := backup.New(a.cfg.Paths.BackupDir, root)
	for _, change := range summary.Eligible {
		if _, err := manager.Backup(change.Path); err != nil {
			summary.Errors++
			a.logger.Error("backup failed",
				slog.String("path", change.Path),
				slog.String("error", err.Error()))
			continue
		}
		summary.BackedUp++
	}
}
