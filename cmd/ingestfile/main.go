package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/ingest"
	"github.com/aquaguard/hmpi-service/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		path  = flag.String("file", "", "document to ingest: pdf, csv or xlsx (required)")
		pages = flag.String("pages", "all", "page selector for PDFs, e.g. 'all', '2', '1,3-5'")
	)
	flag.Parse()

	if *path == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	name := filepath.Base(*path)
	format := constants.MapExtToFormat(filepath.Ext(name))
	if format == "" {
		printError("Error: unsupported file type %q, expected pdf, csv or xlsx\n", filepath.Ext(name))
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		printError("Error: reading %s: %v\n", *path, err)
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := repository.Open(ctx, repository.Config(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	sampleStore := repository.NewSampleStore(pool, logger)
	extractor := extract.New(extract.Config{
		Pdftotext:   cfg.Extract.Pdftotext,
		Workers:     cfg.Extract.Workers,
		PageTimeout: cfg.Extract.PageTimeout,
	}, logger)

	orchestrator := ingest.NewBatchOrchestrator(extractor, sampleStore, nil, logger)

	res, err := orchestrator.IngestDocument(ctx, extract.Source{
		Name:   name,
		Format: format,
		Data:   data,
		Pages:  *pages,
	})
	if err != nil {
		logger.Error("ingestion failed", "file", name, "error", err)
		os.Exit(1)
	}

	fmt.Printf("processed: %d\n", res.Processed)
	fmt.Printf("created:   %d\n", res.Created)
	fmt.Printf("skipped:   %d\n", res.SkippedDuplicates)
	fmt.Printf("rejected:  %d\n", len(res.Rejected))
	for _, rej := range res.Rejected {
		fmt.Printf("  row %d: %s\n", rej.Index, rej.Reason)
	}
	if len(res.FailedPages) > 0 {
		fmt.Printf("failed pages: %v\n", res.FailedPages)
	}
}
