package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"exifheal/internal/ledger"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var verifyFresh bool

	cmd := &cobra.Command{
		Use:   "pending [root]",
		Short: "List pending changes recorded by previous scans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			root := ""
			if len(args) == 1 {
				root, err = filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve root: %w", err)
				}
			}
			pending, err := store.PendingChanges(cmd.Context(), root, verifyFresh)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending changes.")
				return nil
			}

			rows := make([][]string, 0, len(pending))
			for _, item := range pending {
				change := item.Change
				timeCol, gpsCol := "-", "-"
				if change.HasTimeChange() {
					timeCol = change.NewDateTimeOriginal + " (" + string(change.TimeConfidence) + ")"
				}
				if change.HasGPSChange() {
					gpsCol = change.NewGPS.String() + " (" + string(change.GPSConfidence) + ")"
				}
				stale := "-"
				if item.Stale {
					stale = "stale"
				}
				rows = append(rows, []string{shortenPath(item.Path, 58), timeCol, gpsCol, stale})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Time", "GPS", "Fresh"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d pending change(s)\n", len(pending))
			return nil
		},
	}

	cmd.Flags().BoolVar(&verifyFresh, "verify", false, "Check each file on disk for staleness")
	return cmd
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent scan runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No scan runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.UUID,
					shortenPath(run.Root, 40),
					run.StartedAt.Format(time.RFC3339),
					formatFinished(run),
					strconv.FormatInt(run.FileCount, 10),
					strconv.FormatInt(run.ChangesProposed, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Run", "Root", "Started", "Finished", "Files", "Changes"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	return cmd
}

func formatFinished(run ledger.ScanRun) string {
	if run.FinishedAt == nil {
		return "interrupted"
	}
	return run.FinishedAt.Format(time.RFC3339)
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files tracked:        %d\n", stats.TotalFiles)
			fmt.Fprintf(out, "Pending changes:      %d\n", stats.Pending)
			fmt.Fprintf(out, "Applied changes:      %d\n", stats.Applied)
			fmt.Fprintf(out, "Bulk-copied dirs:     %d\n", stats.BulkCopiedDirs)
			return nil
		},
	}
}
