package config

const (
	defaultStateDir          = "~/.local/share/exifheal"
	defaultLogDir            = "~/.local/share/exifheal/logs"
	defaultBackupDir         = "~/.local/share/exifheal/backups"
	defaultReportDir         = "~/.local/share/exifheal/reports"
	defaultMaxTimeGap        = 21600
	defaultMaxDistanceKM     = 50.0
	defaultMinTimeConfidence = "med"
	defaultMinGPSConfidence  = "med"
	defaultExiftoolBinary    = "exiftool"
	defaultReadTimeout       = 300
	defaultWriteTimeout      = 600
	defaultBatchSize         = 100
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultExtensions() []string {
	return []string{"jpg", "jpeg", "dng", "heic", "png", "mp4", "mov", "3gp"}
}

func defaultExcludeGlobs() []string {
	return []string{
		"*/_Unsorted_LEGACY_DO_NOT_TOUCH/*",
		"*/ZZ_Private/*",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			BackupDir: defaultBackupDir,
			ReportDir: defaultReportDir,
		},
		Scan: Scan{
			Extensions:   defaultExtensions(),
			ExcludeGlobs: defaultExcludeGlobs(),
			MaxTimeGap:   defaultMaxTimeGap,
			UseMtime:     true,
		},
		GPS: GPS{
			MaxDistanceKM: defaultMaxDistanceKM,
		},
		Apply: Apply{
			MinTimeConfidence: defaultMinTimeConfidence,
			MinGPSConfidence:  defaultMinGPSConfidence,
			Backup:            true,
			WriteProvenance:   true,
			XMPMirror:         true,
			BatchSize:         defaultBatchSize,
		},
		ExifTool: ExifTool{
			Binary:       defaultExiftoolBinary,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
