package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/extract"
)

// sourceFromUpload reads the multipart "file" field into an extraction
// source. The optional "pages" form field carries a page selector for PDFs.
func (s *Server) sourceFromUpload(c *gin.Context) (extract.Source, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return extract.Source{}, false
	}

	name := filepath.Base(fileHeader.Filename)
	format := constants.MapExtToFormat(filepath.Ext(name))
	if format == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported file type, expected one of: pdf, csv, xlsx",
		})
		return extract.Source{}, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file", "filename", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return extract.Source{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Error("failed to read uploaded file", "filename", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return extract.Source{}, false
	}

	return extract.Source{
		Name:   name,
		Format: format,
		Data:   data,
		Pages:  strings.TrimSpace(c.PostForm("pages")),
	}, true
}

func (s *Server) handleIngestDocument(c *gin.Context) {
	src, ok := s.sourceFromUpload(c)
	if !ok {
		return
	}

	res, err := s.ingestor.IngestDocument(c.Request.Context(), src)
	if err != nil {
		s.writeError(c, err, "ingestion failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleIngestDocumentAsync(c *gin.Context) {
	src, ok := s.sourceFromUpload(c)
	if !ok {
		return
	}

	id, err := s.ingestor.IngestDocumentAsync(c.Request.Context(), src)
	if err != nil {
		s.writeError(c, err, "failed to schedule ingestion")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": id.String(),
		"status": string(constants.JobStatusPending),
	})
}

func (s *Server) handleJobStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job id must be a UUID"})
		return
	}

	job, err := s.ingestor.JobStatus(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err, "failed to fetch job")
		return
	}
	c.JSON(http.StatusOK, job)
}
