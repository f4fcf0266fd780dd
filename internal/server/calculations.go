package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/calc"
	"github.com/aquaguard/hmpi-service/internal/hmpi"
)

func (s *Server) handleCalcSingle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := validateJSONAgainstSchema(calcSingleSchema, body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var in calc.SampleInput
	if err := json.Unmarshal(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := s.calculator.ComputeSingle(in)
	if err != nil {
		s.writeError(c, err, "calculation failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCalcBatch(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := validateJSONAgainstSchema(calcBatchSchema, body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var req struct {
		Samples []calc.SampleInput `json:"samples"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, s.calculator.ComputeBatch(req.Samples))
}

func (s *Server) handleCalcYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1900 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a plausible four-digit year"})
		return
	}
	force := c.Query("force_recalculate") == "true"

	summary, err := s.calculator.ComputeYear(c.Request.Context(), year, force)
	if err != nil {
		s.writeError(c, err, "year calculation failed")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleStandards serves the read-only standards table so the frontend can
// render thresholds and supported metals without hardcoding them.
func (s *Server) handleStandards(c *gin.Context) {
	metals := make([]gin.H, 0, len(hmpi.Standards))
	for _, m := range hmpi.SupportedMetals() {
		metals = append(metals, gin.H{
			"metal":             string(m),
			"standard_mg_per_l": hmpi.Standards[m],
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"calculation_method": hmpi.Method,
		"metals":             metals,
		"thresholds":         hmpi.Thresholds(),
		"categories":         constants.CategoriesAsStrings(),
	})
}
