package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/repository"
)

// hotspotThreshold is the HPI value above which a site counts as a pollution
// hotspot.
const hotspotThreshold = 100.0

// handleMapPoints serves one page of computed-index points for the map,
// with page-level statistics so the frontend can render a legend without a
// second round trip. The detail query parameter picks one of three field
// sets: minimal (coordinates and value only), basic (adds names and
// category) or full.
func (s *Server) handleMapPoints(c *gin.Context) {
	page, pageSize := pagination(c)
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))
	detail := c.DefaultQuery("detail", "basic")
	if detail != "minimal" && detail != "basic" && detail != "full" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "detail must be one of: minimal, basic, full"})
		return
	}

	points, total, err := s.indices.ListMapPoints(c.Request.Context(), repository.MapFilter{
		Year:     year,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.writeError(c, err, "failed to list map points")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points":      projectPoints(points, detail),
		"count":       len(points),
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
		"detail":      detail,
		"stats":       pointStats(points),
	})
}

func projectPoints(points []*entity.MapPoint, detail string) []gin.H {
	out := make([]gin.H, 0, len(points))
	for _, p := range points {
		item := gin.H{
			"sample":     p.Sample,
			"latitude":   p.Latitude,
			"longitude":  p.Longitude,
			"hmpi_value": p.HPIValue,
		}
		if detail == "basic" || detail == "full" {
			item["location_name"] = p.LocationName
			item["state"] = p.State
			item["district"] = p.District
			item["quality_category"] = p.QualityCategory
		}
		if detail == "full" {
			item["computed_at"] = p.ComputedAt
			item["calculation_year"] = p.Year
		}
		out = append(out, item)
	}
	return out
}

func (s *Server) handleHotspots(c *gin.Context) {
	threshold := hotspotThreshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a positive number"})
			return
		}
		threshold = v
	}

	points, err := s.indices.Hotspots(c.Request.Context(), threshold)
	if err != nil {
		s.writeError(c, err, "failed to list hotspots")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hotspots":  points,
		"count":     len(points),
		"threshold": threshold,
	})
}

func pointStats(points []*entity.MapPoint) gin.H {
	if len(points) == 0 {
		return gin.H{"avg_hpi": 0, "quality_distribution": map[string]int{}}
	}

	sum := 0.0
	distribution := map[string]int{}
	for _, p := range points {
		sum += p.HPIValue
		distribution[string(p.QualityCategory)]++
	}
	return gin.H{
		"avg_hpi":              sum / float64(len(points)),
		"quality_distribution": distribution,
	}
}
