package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquaguard/hmpi-service/internal/common"
)

// writeError maps application errors onto HTTP status codes. Internal detail
// stays in the logs; clients get the sanitized message.
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrSchemaMismatch), errors.Is(err, common.ErrNoTables):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
