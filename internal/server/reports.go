package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aquaguard/hmpi-service/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// summaryPageSize bounds each store read while the summary walks all points.
const summaryPageSize = 500

// handleReportSummary aggregates every computed index (optionally one year)
// into a single JSON report: totals, HPI spread, quality distribution and
// the hotspot count.
func (s *Server) handleReportSummary(c *gin.Context) {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))

	var (
		total        int
		sum          float64
		minHPI       float64
		maxHPI       float64
		hotspots     int
		distribution = map[string]int{}
	)
	for page := 1; ; page++ {
		points, _, err := s.indices.ListMapPoints(c.Request.Context(), repository.MapFilter{
			Year:     year,
			Page:     page,
			PageSize: summaryPageSize,
		})
		if err != nil {
			s.writeError(c, err, "failed to build summary report")
			return
		}
		if len(points) == 0 {
			break
		}
		for _, p := range points {
			if total == 0 || p.HPIValue < minHPI {
				minHPI = p.HPIValue
			}
			if total == 0 || p.HPIValue > maxHPI {
				maxHPI = p.HPIValue
			}
			total++
			sum += p.HPIValue
			distribution[string(p.QualityCategory)]++
			if p.HPIValue > hotspotThreshold {
				hotspots++
			}
		}
		if len(points) < summaryPageSize {
			break
		}
	}

	avg := 0.0
	if total > 0 {
		avg = sum / float64(total)
	}
	c.JSON(http.StatusOK, gin.H{
		"year":                 year,
		"total_indices":        total,
		"average_hpi":          avg,
		"min_hpi":              minHPI,
		"max_hpi":              maxHPI,
		"hotspot_count":        hotspots,
		"quality_distribution": distribution,
	})
}

func (s *Server) handleExportIndices(c *gin.Context) {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))

	data, err := s.exporter.ExportIndicesXLSX(c.Request.Context(), year)
	if err != nil {
		s.writeError(c, err, "report export failed")
		return
	}

	filename := "computed-indices.xlsx"
	if year > 0 {
		filename = fmt.Sprintf("computed-indices-%d.xlsx", year)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
