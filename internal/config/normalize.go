package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	if err := c.normalizeGPS(); err != nil {
		return err
	}
	c.normalizeApply()
	c.normalizeExifTool()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = defaultBackupDir
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = defaultExtensions()
	} else {
		exts := make([]string, 0, len(c.Scan.Extensions))
		seen := make(map[string]struct{}, len(c.Scan.Extensions))
		for _, ext := range c.Scan.Extensions {
			normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		if len(exts) == 0 {
			exts = defaultExtensions()
		}
		c.Scan.Extensions = exts
	}
	if c.Scan.MaxTimeGap <= 0 {
		c.Scan.MaxTimeGap = defaultMaxTimeGap
	}
}

func (c *Config) normalizeGPS() error {
	var err error
	if c.GPS.MaxDistanceKM <= 0 {
		c.GPS.MaxDistanceKM = defaultMaxDistanceKM
	}
	c.GPS.DefaultCoordinate = strings.TrimSpace(c.GPS.DefaultCoordinate)
	c.GPS.HintsPath = strings.TrimSpace(c.GPS.HintsPath)
	if c.GPS.HintsPath != "" {
		if c.GPS.HintsPath, err = expandPath(c.GPS.HintsPath); err != nil {
			return fmt.Errorf("gps.hints_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeApply() {
	c.Apply.MinTimeConfidence = strings.ToLower(strings.TrimSpace(c.Apply.MinTimeConfidence))
	if c.Apply.MinTimeConfidence == "" {
		c.Apply.MinTimeConfidence = defaultMinTimeConfidence
	}
	c.Apply.MinGPSConfidence = strings.ToLower(strings.TrimSpace(c.Apply.MinGPSConfidence))
	if c.Apply.MinGPSConfidence == "" {
		c.Apply.MinGPSConfidence = defaultMinGPSConfidence
	}
	if c.Apply.BatchSize <= 0 {
		c.Apply.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeExifTool() {
	c.ExifTool.Binary = strings.TrimSpace(c.ExifTool.Binary)
	if c.ExifTool.Binary == "" {
		c.ExifTool.Binary = defaultExiftoolBinary
	}
	if c.ExifTool.ReadTimeout <= 0 {
		c.ExifTool.ReadTimeout = defaultReadTimeout
	}
	if c.ExifTool.WriteTimeout <= 0 {
		c.ExifTool.WriteTimeout = defaultWriteTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
