package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exifheal/internal/config"
	"exifheal/internal/ledger"
	"exifheal/internal/logging"
	"exifheal/internal/metadata"
	"exifheal/internal/testsupport"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q
backup_dir = %q
report_dir = %q
`,
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "backups"),
		filepath.Join(base, "reports"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}

func TestConfigInitCreatesSample(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Refuses to clobber without --overwrite.
	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error on existing config")
	}
}

func TestPendingWithEmptyLedger(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "pending")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	requireContains(t, out, "No pending changes.")
}

func TestPendingResolvesRelativeRoot(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := ledger.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	photos := filepath.Join(base, "photos")
	if err := os.MkdirAll(photos, 0o755); err != nil {
		t.Fatalf("mkdir photos: %v", err)
	}
	path := filepath.Join(photos, "a.jpg")
	records := []*metadata.FileRecord{testsupport.NewRecord(path)}
	changes := map[string]*metadata.ProposedChange{
		path: testsupport.TimeChange(path, "2021:06:01 10:00:00", metadata.ConfidenceMed, metadata.TimeSourceNeighborCopy),
	}
	if err := store.SaveDirectory(context.Background(), photos, records, changes, false, "run-1", 1); err != nil {
		t.Fatalf("save directory: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(photos); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prevDir); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
	out, err := runCLI(t, configPath, "pending", ".")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	requireContains(t, out, "a.jpg")
	requireContains(t, out, "1 pending change(s)")
}

func TestRunsWithEmptyLedger(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No scan runs recorded.")
}

func TestStatsWithEmptyLedger(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Files tracked:        0")
}
