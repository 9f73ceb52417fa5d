// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"exifheal/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.BackupDir = filepath.Join(base, "backups")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithThresholds overrides the apply-stage confidence thresholds.
func WithThresholds(minTime, minGPS string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Apply.MinTimeConfidence = minTime
		b.cfg.Apply.MinGPSConfidence = minGPS
	}
}

// WithMaxTimeGap sets the neighbor search window in seconds.
func WithMaxTimeGap(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.MaxTimeGap = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
