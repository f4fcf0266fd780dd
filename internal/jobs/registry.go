// Package jobs tracks background ingestion runs in a small sqlite registry,
// giving fire-and-forget ingestion an explicit, queryable job handle.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/common"
)

// Job is one ingestion run and its outcome counts.
type Job struct {
	ID                uuid.UUID           `json:"id"`
	SourceName        string              `json:"source_name"`
	Status            constants.JobStatus `json:"status"`
	SubmittedAt       time.Time           `json:"submitted_at"`
	StartedAt         *time.Time          `json:"started_at,omitempty"`
	FinishedAt        *time.Time          `json:"finished_at,omitempty"`
	Processed         int                 `json:"records_processed"`
	Created           int                 `json:"new_records_created"`
	SkippedDuplicates int                 `json:"skipped_duplicates"`
	Rejected          int                 `json:"rejected"`
	Error             string              `json:"error,omitempty"`
}

// Counts carries the terminal counters of a finished run.
type Counts struct {
	Processed         int
	Created           int
	SkippedDuplicates int
	Rejected          int
}

type Registry struct {
	db     *sql.DB
	logger *slog.Logger
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS ingest_jobs (
	id TEXT PRIMARY KEY,
	source_name TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	submitted_at TIMESTAMP NOT NULL,
	started_at TIMESTAMP,
	finished_at TIMESTAMP,
	processed INTEGER NOT NULL DEFAULT 0,
	created INTEGER NOT NULL DEFAULT 0,
	skipped_duplicates INTEGER NOT NULL DEFAULT 0,
	rejected INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
)`

// NewRegistry opens (or creates) the registry database at path.
func NewRegistry(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open job registry: %w", err)
	}
	// sqlite is a single-writer store; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init job registry schema: %w", err)
	}
	logger.Info("job registry ready", "path", path)
	return &Registry{db: db, logger: logger}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

// Create registers a new pending job and returns its handle.
func (r *Registry) Create(ctx context.Context, sourceName string) (*Job, error) {
	job := &Job{
		ID:          uuid.New(),
		SourceName:  sourceName,
		Status:      constants.JobStatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingest_jobs (id, source_name, status, submitted_at) VALUES (?, ?, ?, ?)`,
		job.ID.String(), job.SourceName, string(job.Status), job.SubmittedAt)
	if err != nil {
		return nil, common.WrapError(err, "create job")
	}
	r.logger.Info("ingestion job created", "job_id", job.ID, "source", sourceName)
	return job, nil
}

// MarkRunning transitions a job to RUNNING.
func (r *Registry) MarkRunning(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE ingest_jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), now, id.String())
	return common.WrapError(err, "mark job running")
}

// MarkSucceeded records the terminal counters of a completed run.
func (r *Registry) MarkSucceeded(ctx context.Context, id uuid.UUID, c Counts) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE ingest_jobs SET status = ?, finished_at = ?, processed = ?, created = ?, skipped_duplicates = ?, rejected = ? WHERE id = ?`,
		string(constants.JobStatusSucceeded), now, c.Processed, c.Created, c.SkippedDuplicates, c.Rejected, id.String())
	return common.WrapError(err, "mark job succeeded")
}

// MarkFailed records a terminal failure.
func (r *Registry) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	now := time.Now().UTC()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE ingest_jobs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(constants.JobStatusFailed), now, msg, id.String())
	return common.WrapError(err, "mark job failed")
}

// Get fetches one job by id; common.ErrNotFound when absent.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source_name, status, submitted_at, started_at, finished_at,
			processed, created, skipped_duplicates, rejected, error
		 FROM ingest_jobs WHERE id = ?`, id.String())

	var (
		job       Job
		rawID     string
		status    string
		startedAt sql.NullTime
		finished  sql.NullTime
	)
	err := row.Scan(&rawID, &job.SourceName, &status, &job.SubmittedAt, &startedAt, &finished,
		&job.Processed, &job.Created, &job.SkippedDuplicates, &job.Rejected, &job.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get job")
	}

	job.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, common.WrapError(err, "parse job id")
	}
	job.Status = constants.JobStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return &job, nil
}
