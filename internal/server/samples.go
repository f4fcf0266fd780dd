package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aquaguard/hmpi-service/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *Server) handleListSamples(c *gin.Context) {
	page, pageSize := pagination(c)
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))

	samples, total, err := s.samples.ListSamples(c.Request.Context(), repository.SampleFilter{
		Year:     year,
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.writeError(c, err, "failed to list samples")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"samples":     samples,
		"count":       len(samples),
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}
