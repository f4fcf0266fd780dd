// Package server exposes the platform over JSON/HTTP for the map frontend.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aquaguard/hmpi-service/internal/calc"
	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/ingest"
	"github.com/aquaguard/hmpi-service/internal/jobs"
	"github.com/aquaguard/hmpi-service/internal/repository"
)

// Ingestor is the slice of the batch orchestrator the handlers use.
type Ingestor interface {
	IngestDocument(ctx context.Context, src extract.Source) (*ingest.BatchResult, error)
	IngestDocumentAsync(ctx context.Context, src extract.Source) (uuid.UUID, error)
	JobStatus(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
}

// Calculator is the slice of the calculation service the handlers use.
type Calculator interface {
	ComputeSingle(in calc.SampleInput) (*calc.SampleResult, error)
	ComputeBatch(inputs []calc.SampleInput) *calc.BatchSummary
	ComputeYear(ctx context.Context, year int, force bool) (*calc.YearSummary, error)
}

// Exporter is the slice of the report exporter the handlers use.
type Exporter interface {
	ExportIndicesXLSX(ctx context.Context, year int) ([]byte, error)
}

type Server struct {
	ingestor       Ingestor
	calculator     Calculator
	samples        repository.SampleStore
	indices        repository.IndexStore
	exporter       Exporter
	healthCheck    func(ctx context.Context) error
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewServer(
	ingestor Ingestor,
	calculator Calculator,
	samples repository.SampleStore,
	indices repository.IndexStore,
	exporter Exporter,
	healthCheck func(ctx context.Context) error,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 64 << 20
	}
	return &Server{
		ingestor:       ingestor,
		calculator:     calculator,
		samples:        samples,
		indices:        indices,
		exporter:       exporter,
		healthCheck:    healthCheck,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	// CORS middleware - must be first; the map frontend is served elsewhere
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(s.requestLogger())
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")

	ingestion := v1.Group("/ingestion")
	ingestion.POST("/documents", s.handleIngestDocument)
	ingestion.POST("/documents/async", s.handleIngestDocumentAsync)
	ingestion.GET("/jobs/:id", s.handleJobStatus)

	calculations := v1.Group("/calculations")
	calculations.POST("/single", s.handleCalcSingle)
	calculations.POST("/batch", s.handleCalcBatch)
	calculations.POST("/year/:year", s.handleCalcYear)
	calculations.GET("/standards", s.handleStandards)

	v1.GET("/samples", s.handleListSamples)

	mapGroup := v1.Group("/map")
	mapGroup.GET("/points", s.handleMapPoints)
	mapGroup.GET("/hotspots", s.handleHotspots)

	v1.GET("/reports/summary", s.handleReportSummary)
	v1.GET("/reports/indices.xlsx", s.handleExportIndices)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("http request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts.
func NewHTTPServer(cfg common.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
