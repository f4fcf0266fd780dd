// Package extract pulls tabular sample records out of PDF, CSV and XLSX
// documents and reconciles them against the expected column schema.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/common"
)

type Config struct {
	Pdftotext   string        // binary name or absolute path; if empty -> "pdftotext"
	Workers     int           // bounded pool for per-page extraction, default 5
	PageTimeout time.Duration // per-page limit, default 30s
}

// Source is one document to extract from.
type Source struct {
	Name   string
	Format constants.DocumentFormat
	Data   []byte
	Pages  string // page selector, PDF only; "" means all
}

// Result is the concatenated, schema-reconciled output of one extraction.
type Result struct {
	Rows        []map[string]string
	PageCount   int
	FailedPages []int
	Duration    time.Duration
}

type TableExtractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *TableExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	return &TableExtractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract picks a strategy based on the declared document format.
func (e *TableExtractor) Extract(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	var (
		res *Result
		err error
	)
	switch src.Format {
	case constants.PDF:
		res, err = e.extractPDF(ctx, src)
	case constants.CSV, constants.XLSX:
		res, err = e.extractSingleTable(src)
	default:
		return nil, fmt.Errorf("unsupported document format: %q", src.Format)
	}
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

type pageResult struct {
	page int
	rows [][]string
	err  error
}

func (e *TableExtractor) extractPDF(ctx context.Context, src Source) (*Result, error) {
	path, cleanup, err := e.writeTemp(src.Data, "hmpi-ingest-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("spill upload to disk: %w", err)
	}
	defer cleanup()

	total, err := e.pdfPageCount(ctx, path)
	if err != nil {
		return nil, err
	}
	pages, err := ParsePageSelector(src.Pages, total)
	if err != nil {
		return nil, common.WrapError(err, "invalid page selector")
	}
	e.logger.Info("extracting pdf tables", "name", src.Name, "total_pages", total, "selected_pages", len(pages))

	// Bounded worker pool over pages. Each task owns its page number and the
	// shared read-only temp path; failures are isolated per page. Results
	// arrive in completion order.
	jobs := make(chan int)
	results := make(chan pageResult, len(pages))
	workers := e.cfg.Workers
	if workers > len(pages) {
		workers = len(pages)
	}
	for w := 0; w < workers; w++ {
		go func() {
			for page := range jobs {
				pctx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
				rows, err := e.extractPDFPage(pctx, path, page)
				cancel()
				results <- pageResult{page: page, rows: rows, err: err}
			}
		}()
	}
	go func() {
		for _, p := range pages {
			jobs <- p
		}
		close(jobs)
	}()

	var (
		raw    []Row
		failed []int
	)
	for range pages {
		pr := <-results
		switch {
		case pr.err != nil:
			e.logger.Error("page extraction failed", "page", pr.page, "error", pr.err)
			failed = append(failed, pr.page)
		case len(pr.rows) == 0:
			e.logger.Warn("no tables found on page", "page", pr.page)
			failed = append(failed, pr.page)
		default:
			e.logger.Info("page extracted", "page", pr.page, "rows", len(pr.rows))
			for _, cells := range pr.rows {
				raw = append(raw, Row{Page: pr.page, Cells: cells})
			}
		}
	}
	sort.Ints(failed)

	if len(raw) == 0 {
		e.logger.Error("no data rows extracted from any page", "name", src.Name, "failed_pages", failed)
		return nil, common.ErrNoTables
	}
	e.logger.Info("page fan-out complete",
		"successful_pages", len(pages)-len(failed), "failed_pages", failed)

	// Completion order is non-deterministic; re-sort by page so repeated
	// ingestions of the same document see the same row sequence.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Page < raw[j].Page })

	recs, err := Reconcile(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: recs, PageCount: total, FailedPages: failed}, nil
}

func (e *TableExtractor) extractSingleTable(src Source) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch src.Format {
	case constants.CSV:
		rows, err = e.csvRows(src.Data)
	case constants.XLSX:
		rows, err = e.xlsxRows(src.Data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNoTables
	}

	raw := make([]Row, 0, len(rows))
	for _, cells := range rows {
		raw = append(raw, Row{Page: 1, Cells: cells})
	}
	recs, err := Reconcile(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: recs, PageCount: 1}, nil
}
