// Package ingest drives the document-to-store pipeline: table extraction,
// row validation, deduplication and batch insertion.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/dedup"
	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/jobs"
	"github.com/aquaguard/hmpi-service/internal/validate"
)

// Extractor is the slice of the table extractor the orchestrator uses.
type Extractor interface {
	Extract(ctx context.Context, src extract.Source) (*extract.Result, error)
}

// SampleWriter is the slice of the sample store the orchestrator uses.
type SampleWriter interface {
	dedup.SerialLookup
	BulkInsertIgnoreConflicts(ctx context.Context, recs []*entity.SampleRecord) (int, error)
}

// BatchResult summarizes one ingestion run end to end.
type BatchResult struct {
	SourceName        string               `json:"source_name"`
	Processed         int                  `json:"records_processed"`
	Created           int                  `json:"new_records_created"`
	SkippedDuplicates int                  `json:"skipped_duplicates"`
	Rejected          []validate.Rejection `json:"rejected,omitempty"`
	FailedPages       []int                `json:"failed_pages,omitempty"`
	Duration          time.Duration        `json:"-"`
}

type BatchOrchestrator struct {
	extractor Extractor
	validator *validate.RecordValidator
	dedup     *dedup.Stage
	store     SampleWriter
	registry  *jobs.Registry
	logger    *slog.Logger
}

func NewBatchOrchestrator(
	extractor Extractor,
	store SampleWriter,
	registry *jobs.Registry,
	logger *slog.Logger,
) *BatchOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchOrchestrator{
		extractor: extractor,
		validator: validate.NewRecordValidator(logger),
		dedup:     dedup.NewStage(store, logger),
		store:     store,
		registry:  registry,
		logger:    logger,
	}
}

// IngestDocument runs the full pipeline synchronously. Re-running the same
// document creates nothing new: duplicates are dropped by the dedup stage
// and, failing that, by the store's conflict handling.
func (o *BatchOrchestrator) IngestDocument(ctx context.Context, src extract.Source) (*BatchResult, error) {
	start := time.Now()
	o.logger.Info("ingestion started", "source", src.Name, "format", src.Format)

	extracted, err := o.extractor.Extract(ctx, src)
	if err != nil {
		return nil, common.WrapError(err, "extract tables")
	}

	records := make([]*entity.SampleRecord, 0, len(extracted.Rows))
	var rejected []validate.Rejection
	for i, row := range extracted.Rows {
		rec, rej := o.validator.ValidateRow(row, i)
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		records = append(records, rec)
	}

	outcome := o.dedup.Apply(ctx, records)

	created := 0
	if len(outcome.Kept) > 0 {
		created, err = o.store.BulkInsertIgnoreConflicts(ctx, outcome.Kept)
		if err != nil {
			return nil, common.WrapError(err, "persist samples")
		}
	}

	res := &BatchResult{
		SourceName:        src.Name,
		Processed:         len(extracted.Rows),
		Created:           created,
		SkippedDuplicates: outcome.SkippedDuplicates + (len(outcome.Kept) - created),
		Rejected:          rejected,
		FailedPages:       extracted.FailedPages,
		Duration:          time.Since(start),
	}
	o.logger.Info("ingestion finished",
		"source", src.Name,
		"processed", res.Processed,
		"created", res.Created,
		"skipped_duplicates", res.SkippedDuplicates,
		"rejected", len(res.Rejected),
		"duration", res.Duration)
	return res, nil
}

// IngestDocumentAsync registers a job, runs the pipeline in the background
// and returns the job id immediately. Progress is tracked in the registry.
func (o *BatchOrchestrator) IngestDocumentAsync(ctx context.Context, src extract.Source) (uuid.UUID, error) {
	job, err := o.registry.Create(ctx, src.Name)
	if err != nil {
		return uuid.Nil, common.WrapError(err, "register ingestion job")
	}

	go func() {
		bg := context.Background()
		if err := o.registry.MarkRunning(bg, job.ID); err != nil {
			o.logger.Error("failed to mark job running", "job_id", job.ID, "error", err)
		}

		res, err := o.IngestDocument(bg, src)
		if err != nil {
			o.logger.Error("background ingestion failed", "job_id", job.ID, "source", src.Name, "error", err)
			if merr := o.registry.MarkFailed(bg, job.ID, err); merr != nil {
				o.logger.Error("failed to mark job failed", "job_id", job.ID, "error", merr)
			}
			return
		}

		counts := jobs.Counts{
			Processed:         res.Processed,
			Created:           res.Created,
			SkippedDuplicates: res.SkippedDuplicates,
			Rejected:          len(res.Rejected),
		}
		if err := o.registry.MarkSucceeded(bg, job.ID, counts); err != nil {
			o.logger.Error("failed to mark job succeeded", "job_id", job.ID, "error", err)
		}
	}()

	return job.ID, nil
}

// JobStatus reads one ingestion job from the registry.
func (o *BatchOrchestrator) JobStatus(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	return o.registry.Get(ctx, id)
}
