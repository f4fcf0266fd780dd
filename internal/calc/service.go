// Package calc exposes index computation over ad-hoc concentration payloads
// and over the persisted sample store.
package calc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/hmpi"
	"github.com/aquaguard/hmpi-service/internal/repository"
	"github.com/aquaguard/hmpi-service/internal/units"
)

// SampleLister is the slice of the sample store the service reads from.
type SampleLister interface {
	ListSamples(ctx context.Context, f repository.SampleFilter) ([]*entity.SampleRecord, int, error)
}

// IndexWriter is the slice of the index store the service writes to. The
// key lookup lets a non-forced year run skip samples that already carry a
// result for the method.
type IndexWriter interface {
	BulkUpsert(ctx context.Context, indices []*entity.ComputedIndex, force bool) (int, error)
	ExistingSampleKeys(ctx context.Context, kind entity.SampleKind, keys []string, method string) (map[string]struct{}, error)
}

// SampleInput is one ad-hoc computation request. Each metal field is an
// optional concentration in mg/L; a nil pointer means unmeasured, which is
// not the same as a measured zero.
type SampleInput struct {
	SampleID string   `json:"sample_id"`
	Arsenic  *float64 `json:"arsenic,omitempty"`
	Lead     *float64 `json:"lead,omitempty"`
	Cadmium  *float64 `json:"cadmium,omitempty"`
	Chromium *float64 `json:"chromium,omitempty"`
	Mercury  *float64 `json:"mercury,omitempty"`
	Iron     *float64 `json:"iron,omitempty"`
	Zinc     *float64 `json:"zinc,omitempty"`
	Copper   *float64 `json:"copper,omitempty"`
	Uranium  *float64 `json:"uranium,omitempty"`
}

// concentrations flattens the present metal fields into a name-keyed map.
func (in SampleInput) concentrations() map[string]float64 {
	fields := map[string]*float64{
		string(hmpi.Arsenic):  in.Arsenic,
		string(hmpi.Lead):     in.Lead,
		string(hmpi.Cadmium):  in.Cadmium,
		string(hmpi.Chromium): in.Chromium,
		string(hmpi.Mercury):  in.Mercury,
		string(hmpi.Iron):     in.Iron,
		string(hmpi.Zinc):     in.Zinc,
		string(hmpi.Copper):   in.Copper,
		string(hmpi.Uranium):  in.Uranium,
	}
	out := make(map[string]float64)
	for name, v := range fields {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

// SampleResult is the computed index set for one sample.
type SampleResult struct {
	SampleID          string  `json:"sample_id"`
	HPI               float64 `json:"hpi_value"`
	HEI               float64 `json:"hei_value"`
	Cd                float64 `json:"cd_value"`
	MI                float64 `json:"mi_value"`
	QualityCategory   string  `json:"quality_category"`
	CalculationMethod string  `json:"calculation_method"`
	Notes             string  `json:"notes"`
}

// BatchFailure names one input the batch run could not compute.
type BatchFailure struct {
	SampleID string `json:"sample_id"`
	Reason   string `json:"reason"`
}

// BatchSummary aggregates a multi-sample run.
type BatchSummary struct {
	Results     []SampleResult `json:"results"`
	Failed      []BatchFailure `json:"failed,omitempty"`
	SuccessRate float64        `json:"success_rate"`
}

// YearSummary reports a bulk computation over one survey year.
type YearSummary struct {
	Year            int           `json:"year"`
	Samples         int           `json:"samples_seen"`
	Computed        int           `json:"computed"`
	Skipped         int           `json:"skipped_no_metals"`
	AlreadyComputed int           `json:"skipped_existing"`
	Written         int           `json:"records_written"`
	Duration        time.Duration `json:"-"`
}

type Service struct {
	samples SampleLister
	indices IndexWriter
	cfg     common.CalcConfig
	logger  *slog.Logger
}

func NewService(samples SampleLister, indices IndexWriter, cfg common.CalcConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.MaxPageFailures <= 0 {
		cfg.MaxPageFailures = 3
	}
	return &Service{samples: samples, indices: indices, cfg: cfg, logger: logger}
}

// ComputeSingle evaluates one ad-hoc request. Inputs must name at least one
// metal with a known standard; negative concentrations are rejected.
func (s *Service) ComputeSingle(in SampleInput) (*SampleResult, error) {
	conc, err := toConcentrations(in.concentrations())
	if err != nil {
		return nil, err
	}
	res := hmpi.Compute(conc)

	used := make([]string, 0, len(conc))
	for metal := range conc {
		if _, ok := hmpi.Standards[metal]; ok {
			used = append(used, string(metal))
		}
	}
	sort.Strings(used)

	return &SampleResult{
		SampleID:          in.SampleID,
		HPI:               res.HPI,
		HEI:               res.HEI,
		Cd:                res.Cd,
		MI:                res.MI,
		QualityCategory:   string(res.Category),
		CalculationMethod: hmpi.Method,
		Notes:             "computed from " + strings.Join(used, ", "),
	}, nil
}

// ComputeBatch evaluates many ad-hoc requests, partitioning failures per
// sample instead of failing the run.
func (s *Service) ComputeBatch(inputs []SampleInput) *BatchSummary {
	summary := &BatchSummary{Results: make([]SampleResult, 0, len(inputs))}
	for _, in := range inputs {
		res, err := s.ComputeSingle(in)
		if err != nil {
			summary.Failed = append(summary.Failed, BatchFailure{SampleID: in.SampleID, Reason: err.Error()})
			continue
		}
		summary.Results = append(summary.Results, *res)
	}
	if len(inputs) > 0 {
		summary.SuccessRate = float64(len(summary.Results)) / float64(len(inputs)) * 100
	}
	return summary
}

// ComputeYear walks every stored sample for the year page by page, computes
// indices for those carrying metal measurements and upserts the results.
// With force, prior results for the same sample and method are replaced.
func (s *Service) ComputeYear(ctx context.Context, year int, force bool) (*YearSummary, error) {
	start := time.Now()
	summary := &YearSummary{Year: year}
	pageFailures := 0

	for page := 1; page <= s.cfg.MaxPages; page++ {
		recs, _, err := s.samples.ListSamples(ctx, repository.SampleFilter{
			Year:     year,
			Page:     page,
			PageSize: s.cfg.PageSize,
		})
		if err != nil {
			pageFailures++
			s.logger.Error("sample page fetch failed", "year", year, "page", page, "error", err)
			if pageFailures >= s.cfg.MaxPageFailures {
				return nil, common.WrapError(err, fmt.Sprintf("fetch samples for year %d", year))
			}
			page--
			continue
		}
		pageFailures = 0
		if len(recs) == 0 {
			break
		}
		pageLen := len(recs)
		summary.Samples += pageLen

		if !force {
			recs = s.dropAlreadyComputed(ctx, recs, summary)
		}

		indices, skipped := s.computeRecords(recs)
		summary.Computed += len(indices)
		summary.Skipped += skipped

		for start := 0; start < len(indices); start += s.cfg.BatchSize {
			end := min(start+s.cfg.BatchSize, len(indices))
			written, err := s.indices.BulkUpsert(ctx, indices[start:end], force)
			if err != nil {
				return nil, common.WrapError(err, "store computed indices")
			}
			summary.Written += written
		}

		if pageLen < s.cfg.PageSize {
			break
		}
	}

	summary.Duration = time.Since(start)
	s.logger.Info("year computation finished",
		"year", year,
		"samples", summary.Samples,
		"computed", summary.Computed,
		"skipped", summary.Skipped,
		"skipped_existing", summary.AlreadyComputed,
		"written", summary.Written,
		"force", force,
		"duration", summary.Duration)
	return summary, nil
}

// dropAlreadyComputed filters out samples that already carry an index for
// the method, counting them on the summary. A failed lookup is logged and
// the whole page is recomputed; the non-forced upsert keeps the prior
// records, so correctness does not depend on the filter.
func (s *Service) dropAlreadyComputed(ctx context.Context, recs []*entity.SampleRecord, summary *YearSummary) []*entity.SampleRecord {
	if len(recs) == 0 {
		return recs
	}
	keys := make([]string, 0, len(recs))
	for _, rec := range recs {
		keys = append(keys, rec.Ref().Key())
	}
	existing, err := s.indices.ExistingSampleKeys(ctx, entity.SampleKindGroundWater, keys, hmpi.Method)
	if err != nil {
		s.logger.Warn("existing-index lookup failed, recomputing full page", "error", err)
		return recs
	}
	if len(existing) == 0 {
		return recs
	}
	fresh := make([]*entity.SampleRecord, 0, len(recs))
	for _, rec := range recs {
		if _, ok := existing[rec.Ref().Key()]; ok {
			summary.AlreadyComputed++
			continue
		}
		fresh = append(fresh, rec)
	}
	return fresh
}

// computeRecords fans one page of samples across a bounded worker pool.
// Records without any metal measurement are skipped, not zero-filled.
func (s *Service) computeRecords(recs []*entity.SampleRecord) ([]*entity.ComputedIndex, int) {
	type job struct {
		idx int
		rec *entity.SampleRecord
	}

	jobsCh := make(chan job)
	out := make([]*entity.ComputedIndex, len(recs))
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobsCh {
				conc := recordConcentrations(j.rec)
				if len(conc) == 0 {
					continue
				}
				res := hmpi.Compute(conc)
				out[j.idx] = &entity.ComputedIndex{
					Sample:            j.rec.Ref(),
					HPIValue:          res.HPI,
					HEIValue:          &res.HEI,
					CdValue:           &res.Cd,
					MIValue:           &res.MI,
					QualityCategory:   res.Category,
					CalculationMethod: hmpi.Method,
					ComputedAt:        now,
				}
			}
		}()
	}
	for i, rec := range recs {
		jobsCh <- job{idx: i, rec: rec}
	}
	close(jobsCh)
	wg.Wait()

	indices := make([]*entity.ComputedIndex, 0, len(recs))
	for _, ci := range out {
		if ci != nil {
			indices = append(indices, ci)
		}
	}
	return indices, len(recs) - len(indices)
}

// recordConcentrations normalizes a stored sample's metal measurements to
// mg/L. The survey schema carries iron in ppm and arsenic and uranium in ppb.
func recordConcentrations(rec *entity.SampleRecord) hmpi.Concentrations {
	conc := hmpi.Concentrations{}
	if v := units.Optional(rec.FePPM, units.PPM); v != nil {
		conc[hmpi.Iron] = *v
	}
	if v := units.Optional(rec.AsPPB, units.PPB); v != nil {
		conc[hmpi.Arsenic] = *v
	}
	if v := units.Optional(rec.UPPB, units.PPB); v != nil {
		conc[hmpi.Uranium] = *v
	}
	return conc
}

func toConcentrations(raw map[string]float64) (hmpi.Concentrations, error) {
	if len(raw) == 0 {
		return nil, common.NewAppError("CALC_INPUT", "at least one metal concentration is required", common.ErrInvalidInput)
	}
	conc := hmpi.Concentrations{}
	for name, value := range raw {
		if value < 0 {
			return nil, common.NewAppError("CALC_INPUT", fmt.Sprintf("negative concentration for %s", name), common.ErrInvalidInput)
		}
		conc[hmpi.Metal(name)] = value
	}
	known := false
	for metal := range conc {
		if _, ok := hmpi.Standards[metal]; ok {
			known = true
			break
		}
	}
	if !known {
		names := make([]string, 0, len(raw))
		for name := range raw {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, common.NewAppError("CALC_INPUT",
			fmt.Sprintf("no metal with a known standard among %v", names), common.ErrInvalidInput)
	}
	return conc, nil
}
