package constants

// JobStatus is the canonical status for rows in ingest_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending   JobStatus = "PENDING"   // accepted, not yet picked up
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusSucceeded JobStatus = "SUCCEEDED" // completed, counts recorded
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
