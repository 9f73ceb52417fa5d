package report

// Summary aggregates counters across one scan run.
type Summary struct {
	DirsScanned    int
	DirsBulkCopied int
	FilesScanned   int

	FilesMissingTime int
	FilesMissingGPS  int

	FilesProposedTime int
	FilesProposedGPS  int

	FilesGated             int
	FilesSkippedGuardrails int
}

// Add merges another summary's counters into the receiver.
func (s *Summary) Add(other Summary) {
	s.DirsScanned += other.DirsScanned
	s.DirsBulkCopied += other.DirsBulkCopied
	s.FilesScanned += other.FilesScanned
	s.FilesMissingTime += other.FilesMissingTime
	s.FilesMissingGPS += other.FilesMissingGPS
	s.FilesProposedTime += other.FilesProposedTime
	s.FilesProposedGPS += other.FilesProposedGPS
	s.FilesGated += other.FilesGated
	s.FilesSkippedGuardrails += other.FilesSkippedGuardrails
}
