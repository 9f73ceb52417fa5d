package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"exifheal/internal/applier"
	"exifheal/internal/ledger"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var (
		commit             bool
		limit              int
		allowLowConfidence bool
		noProvenance       bool
		noXMPMirror        bool
	)

	cmd := &cobra.Command{
		Use:   "apply <root>",
		Short: "Apply proposed changes from a previous scan",
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
			out := cmd.OutOrStdout()

			if allowLowConfidence {
				cfg.Apply.MinTimeConfidence = "low"
				cfg.Apply.MinGPSConfidence = "low"
			}
			if noProvenance {
				cfg.Apply.WriteProvenance = false
			}
			if noXMPMirror {
				cfg.Apply.XMPMirror = false
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

			client, err := ctx.newExiftoolClient()
			if err != nil {
				return err
			}

			summary, err := applier.New(cfg, client, store, logger).Apply(cmd.Context(), applier.Options{
				Root:   args[0],
				Commit: commit,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if summary.TotalPending == 0 {
				fmt.Fprintln(out, "No pending changes to apply.")
				return nil
			}
			if len(summary.Eligible) == 0 {
				fmt.Fprintf(out, "No eligible changes after confidence gating (min_time=%s, min_gps=%s).\n",
					cfg.Apply.MinTimeConfidence, cfg.Apply.MinGPSConfidence)
				fmt.Fprintf(out, "  %d gated, %d stale. Use --allow-low-confidence to include gated changes.\n",
					summary.Gated, summary.Stale)
				return nil
			}

			fmt.Fprintf(out, "Changes to apply: %d\n", len(summary.Eligible))
			fmt.Fprintf(out, "  Gated (skipped): %d\n", summary.Gated)
			if summary.Stale > 0 {
				fmt.Fprintf(out, "  Stale (rescan):  %d\n", summary.Stale)
			}

			if summary.DryRun {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "DRY RUN, no files will be modified. Use --commit to write changes.")
				preview := summary.Eligible
				if len(preview) > 10 {
					preview = preview[:10]
				}
				for _, change := range preview {
					parts := ""
					if change.HasTimeChange() && !change.GatedTime {
						parts = "time=" + change.NewDateTimeOriginal
					}
					if change.HasGPSChange() && !change.GatedGPS {
						if parts != "" {
							parts += ", "
						}
						parts += "gps=" + change.NewGPS.String()
					}
					fmt.Fprintf(out, "  %s: %s\n", change.Path, parts)
				}
				if len(summary.Eligible) > 10 {
					fmt.Fprintf(out, "  ... and %d more\n", len(summary.Eligible)-10)
				}
				return nil
			}

			if summary.BackedUp > 0 {
				fmt.Fprintf(out, "  Backed up: %d\n", summary.BackedUp)
			}
			fmt.Fprintf(out, "  Updated:   %d\n", summary.Written)
			if summary.NotWritten > 0 {
				fmt.Fprintf(out, "  Not written: %d\n", summary.NotWritten)
			}
			if summary.Errors > 0 {
				fmt.Fprintf(out, "  Errors:    %d\n", summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Actually write changes (default is a dry run)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Apply changes to at most N files (0 = unlimited)")
	cmd.Flags().BoolVar(&allowLowConfidence, "allow-low-confidence", false, "Apply low confidence changes")
	cmd.Flags().BoolVar(&noProvenance, "no-provenance", false, "Skip writing inference provenance XMP tags")
	cmd.Flags().BoolVar(&noXMPMirror, "no-xmp-mirror", false, "Skip mirroring written values into XMP tags")

	return cmd
}
