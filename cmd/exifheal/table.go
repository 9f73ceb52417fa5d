package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"exifheal/internal/metadata"
	"exifheal/internal/report"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// planTableLimit keeps plan output readable on large scans.
const planTableLimit = 50

func printPlanTable(out io.Writer, changes []*metadata.ProposedChange) {
	if len(changes) == 0 {
		fmt.Fprintln(out, "No changes proposed.")
		return
	}

	rows := changes
	if len(rows) > planTableLimit {
		rows = rows[:planTableLimit]
	}

	tableRows := make([][]string, 0, len(rows))
	for _, change := range rows {
		timeFlag, gpsFlag := "-", "-"
		timeConf, gpsConf := "-", "-"
		if change.HasTimeChange() {
			timeFlag = "Y"
			timeConf = string(change.TimeConfidence)
		}
		if change.HasGPSChange() {
			gpsFlag = "Y"
			gpsConf = string(change.GPSConfidence)
		}
		gated := "-"
		if change.GatedTime || change.GatedGPS || change.Skipped {
			gated = "Y"
		}
		tableRows = append(tableRows, []string{
			shortenPath(change.Path, 58),
			timeFlag, gpsFlag, timeConf, gpsConf, gated,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"File", "Time?", "GPS?", "TConf", "GConf", "Gated"},
		tableRows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	if len(changes) > planTableLimit {
		fmt.Fprintf(out, "... and %d more\n", len(changes)-planTableLimit)
	}
}

func shortenPath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}

func printScanSummary(out io.Writer, sum report.Summary) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "exifheal scan summary")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "  Directories scanned:     %d\n", sum.DirsScanned)
	fmt.Fprintf(out, "  Directories bulk-copied: %d\n", sum.DirsBulkCopied)
	fmt.Fprintf(out, "  Files scanned:           %d\n", sum.FilesScanned)
	fmt.Fprintf(out, "  Files missing time:      %d\n", sum.FilesMissingTime)
	fmt.Fprintf(out, "  Files missing GPS:       %d\n", sum.FilesMissingGPS)
	fmt.Fprintf(out, "  Time changes proposed:   %d\n", sum.FilesProposedTime)
	fmt.Fprintf(out, "  GPS changes proposed:    %d\n", sum.FilesProposedGPS)
	fmt.Fprintf(out, "  Changes gated (low conf): %d\n", sum.FilesGated)
	fmt.Fprintf(out, "  Skipped (guardrails):    %d\n", sum.FilesSkippedGuardrails)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out)
}
