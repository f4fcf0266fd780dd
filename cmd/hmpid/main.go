package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aquaguard/hmpi-service/internal/calc"
	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/export"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/ingest"
	"github.com/aquaguard/hmpi-service/internal/jobs"
	"github.com/aquaguard/hmpi-service/internal/repository"
	"github.com/aquaguard/hmpi-service/internal/server"
)

func main() {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	registry, err := jobs.NewRegistry(cfg.Jobs.DBPath, logger)
	if err != nil {
		logger.Error("failed to open job registry", "error", err)
		os.Exit(1)
	}
	defer registry.Close()

	sampleStore := repository.NewSampleStore(pool, logger)
	indexStore := repository.NewIndexStore(pool, logger)

	extractor := extract.New(extract.Config{
		Pdftotext:   cfg.Extract.Pdftotext,
		Workers:     cfg.Extract.Workers,
		PageTimeout: cfg.Extract.PageTimeout,
	}, logger)

	orchestrator := ingest.NewBatchOrchestrator(extractor, sampleStore, registry, logger)
	calcService := calc.NewService(sampleStore, indexStore, cfg.Calc, logger)
	exporter := export.NewService(indexStore, logger)

	srv := server.NewServer(
		orchestrator,
		calcService,
		sampleStore,
		indexStore,
		exporter,
		func(ctx context.Context) error {
			return repository.HealthCheck(ctx, pool, 2*time.Second, logger)
		},
		cfg.Extract.MaxUploadBytes,
		logger,
	)

	httpServer := server.NewHTTPServer(cfg.Server, srv.Router())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
