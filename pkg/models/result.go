package models

// RecordError describes one source record that was not written.
type RecordError struct {
	Error   string `json:"error"`
	Payload Record `json:"payload"`
}

// MigrationResult is the outcome of one migration run. In a dry run Created
// counts the records that would have been created.
type MigrationResult struct {
	OK             bool          `json:"ok"`
	RunID          string        `json:"runId"`
	DryRun         bool          `json:"dryRun"`
	SourceInstance string        `json:"sourceInstance"`
	TargetInstance string        `json:"targetInstance"`
	SourceCount    int           `json:"sourceCount"`
	Created        int           `json:"created"`
	Skipped        int           `json:"skipped"`
	Errors         []RecordError `json:"errors"`
}
