// Package dedup filters validated sample batches down to records that are
// new both within the batch and against the persistent store.
package dedup

import (
	"context"
	"log/slog"

	"github.com/aquaguard/hmpi-service/internal/entity"
)

// SerialLookup is the slice of the sample store the stage depends on.
type SerialLookup interface {
	FilterExistingSerials(ctx context.Context, serials []int) (map[int]struct{}, error)
}

// Outcome summarizes one deduplication pass.
type Outcome struct {
	// Kept are first-occurrence records absent from the persisted set.
	Kept []*entity.SampleRecord
	// SkippedDuplicates counts records dropped for colliding with the
	// persisted set. Batch-internal repeats are dropped silently and are
	// not part of this count.
	SkippedDuplicates int
	// LookupFailed reports that the persisted-set lookup was unavailable
	// and everything surviving batch-internal dedup was kept; the storage
	// layer's conflict handling becomes the only duplicate guard.
	LookupFailed bool
}

type Stage struct {
	store  SerialLookup
	logger *slog.Logger
}

func NewStage(store SerialLookup, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{store: store, logger: logger}
}

// Apply deduplicates by serial number: first occurrence wins within the
// batch, then records already persisted are dropped and counted. A failed
// store lookup degrades to keeping everything rather than failing the batch.
func (s *Stage) Apply(ctx context.Context, recs []*entity.SampleRecord) Outcome {
	seen := make(map[int]struct{}, len(recs))
	unique := make([]*entity.SampleRecord, 0, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.SerialNumber]; dup {
			continue
		}
		seen[r.SerialNumber] = struct{}{}
		unique = append(unique, r)
	}

	serials := make([]int, len(unique))
	for i, r := range unique {
		serials[i] = r.SerialNumber
	}

	existing, err := s.store.FilterExistingSerials(ctx, serials)
	if err != nil {
		s.logger.Error("deduplication check against store failed, falling back to insert with conflict handling",
			"error", err, "batch_size", len(unique))
		return Outcome{Kept: unique, LookupFailed: true}
	}

	kept := make([]*entity.SampleRecord, 0, len(unique))
	for _, r := range unique {
		if _, ok := existing[r.SerialNumber]; ok {
			continue
		}
		kept = append(kept, r)
	}

	skipped := len(unique) - len(kept)
	if skipped > 0 {
		s.logger.Info("skipped serial numbers already present in store",
			"skipped", skipped, "incoming_unique", len(unique))
	}
	return Outcome{Kept: kept, SkippedDuplicates: skipped}
}
