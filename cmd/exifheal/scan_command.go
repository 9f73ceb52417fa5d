package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"exifheal/internal/config"
	"exifheal/internal/ledger"
	"exifheal/internal/preflight"
	"exifheal/internal/report"
	"exifheal/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive          bool
		force              bool
		onlyMissingTime    bool
		onlyMissingGPS     bool
		limit              int
		reportPath         string
		printPlan          bool
		allowLowConfidence bool
		skipPreflight      bool
	)

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Scan files and propose metadata changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			root := args[0]
			out := cmd.OutOrStdout()

			if allowLowConfidence {
				cfg.Apply.MinTimeConfidence = "low"
				cfg.Apply.MinGPSConfidence = "low"
			}

			if !skipPreflight {
				if err := runPreflight(cfg, root, out); err != nil {
					return err
				}
			}

			lock, err := ledger.AcquireRunLock(cfg)
			if err != nil {
				if errors.Is(err, ledger.ErrLocked) {
					return err
				}
				return fmt.Errorf("acquire run lock: %w", err)
			}
			defer func() { _ = lock.Release() }()

			store, err := ledger.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hints, err := config.LoadHints(cfg.GPS.HintsPath)
			if err != nil {
				return err
			}

			client, err := ctx.newExiftoolClient()
			if err != nil {
				return err
			}

			if reportPath == "" {
				name := fmt.Sprintf("scan-%s.jsonl", time.Now().Format("20060102-150405"))
				reportPath = filepath.Join(cfg.Paths.ReportDir, name)
			}
			rep, err := report.NewWriter(reportPath)
			if err != nil {
				return err
			}

			result, scanErr := scanner.New(cfg, client, store, hints, logger).Scan(cmd.Context(), scanner.Options{
				Root:            root,
				Recursive:       recursive,
				Force:           force,
				OnlyMissingTime: onlyMissingTime,
				OnlyMissingGPS:  onlyMissingGPS,
				Limit:           limit,
			}, rep)
			if closeErr := rep.Close(); closeErr != nil && scanErr == nil {
				scanErr = closeErr
			}
			if scanErr != nil {
				return scanErr
			}

			printScanSummary(out, result.Summary)
			if printPlan {
				printPlanTable(out, result.Changes)
			}
			fmt.Fprintf(out, "Report written to %s\n", reportPath)
			fmt.Fprintf(out, "Ledger stored at  %s\n", cfg.LedgerPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&recursive, "recursive", true, "Recurse into subdirectories")
	cmd.Flags().BoolVar(&force, "force", false, "Re-evaluate files that already carry the target metadata")
	cmd.Flags().BoolVar(&onlyMissingTime, "only-missing-time", false, "Only process directories with files missing timestamps")
	cmd.Flags().BoolVar(&onlyMissingGPS, "only-missing-gps", false, "Only process directories with files missing GPS")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after N proposed changes (0 = unlimited)")
	cmd.Flags().StringVar(&reportPath, "report", "", "JSONL report output path")
	cmd.Flags().BoolVar(&printPlan, "print-plan", false, "Print a table of proposed changes")
	cmd.Flags().BoolVar(&allowLowConfidence, "allow-low-confidence", false, "Gate at low confidence instead of the configured thresholds")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks")

	return cmd
}

func runPreflight(cfg *config.Config, root string, out io.Writer) error {
	results := preflight.RunAll(cfg, root)
	if preflight.Passed(results) {
		return nil
	}
	for _, result := range results {
		if result.Passed {
			continue
		}
		fmt.Fprintf(out, "preflight failed: %s: %s\n", result.Name, result.Detail)
	}
	return errors.New("preflight checks failed")
}
