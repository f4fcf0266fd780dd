package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/calc"
	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/ingest"
	"github.com/aquaguard/hmpi-service/internal/jobs"
	"github.com/aquaguard/hmpi-service/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIngestor struct {
	result *ingest.BatchResult
	jobID  uuid.UUID
	job    *jobs.Job
	src    extract.Source
}

func (f *fakeIngestor) IngestDocument(_ context.Context, src extract.Source) (*ingest.BatchResult, error) {
	f.src = src
	return f.result, nil
}

func (f *fakeIngestor) IngestDocumentAsync(_ context.Context, src extract.Source) (uuid.UUID, error) {
	f.src = src
	return f.jobID, nil
}

func (f *fakeIngestor) JobStatus(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	if f.job == nil || f.job.ID != id {
		return nil, common.ErrNotFound
	}
	return f.job, nil
}

type fakeSamples struct {
	samples []*entity.SampleRecord
	filter  repository.SampleFilter
}

func (f *fakeSamples) BulkInsertIgnoreConflicts(_ context.Context, recs []*entity.SampleRecord) (int, error) {
	return len(recs), nil
}

func (f *fakeSamples) FilterExistingSerials(_ context.Context, _ []int) (map[int]struct{}, error) {
	return map[int]struct{}{}, nil
}

func (f *fakeSamples) ListSamples(_ context.Context, filter repository.SampleFilter) ([]*entity.SampleRecord, int, error) {
	f.filter = filter
	return f.samples, len(f.samples), nil
}

type fakeIndices struct {
	points    []*entity.MapPoint
	threshold float64
}

func (f *fakeIndices) BulkUpsert(_ context.Context, indices []*entity.ComputedIndex, _ bool) (int, error) {
	return len(indices), nil
}

func (f *fakeIndices) ExistingSampleKeys(_ context.Context, _ entity.SampleKind, _ []string, _ string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (f *fakeIndices) ListMapPoints(_ context.Context, _ repository.MapFilter) ([]*entity.MapPoint, int, error) {
	return f.points, len(f.points), nil
}

func (f *fakeIndices) Hotspots(_ context.Context, threshold float64) ([]*entity.MapPoint, error) {
	f.threshold = threshold
	return f.points, nil
}

type fakeExporter struct{}

func (fakeExporter) ExportIndicesXLSX(_ context.Context, _ int) ([]byte, error) {
	return []byte("PK\x03\x04"), nil
}

func newTestServer(t *testing.T) (*Server, *fakeIngestor, *fakeSamples, *fakeIndices) {
	t.Helper()
	ingestor := &fakeIngestor{
		result: &ingest.BatchResult{SourceName: "survey.pdf", Processed: 3, Created: 2},
		jobID:  uuid.New(),
	}
	samples := &fakeSamples{}
	indices := &fakeIndices{}
	calcSvc := calc.NewService(samples, indices, common.CalcConfig{}, nil)
	srv := NewServer(ingestor, calcSvc, samples, indices, fakeExporter{}, nil, 0, nil)
	return srv, ingestor, samples, indices
}

func doRequest(t *testing.T, srv *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	w := doRequest(t, srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthDegraded(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	srv.healthCheck = func(context.Context) error { return common.ErrDatabase }

	w := doRequest(t, srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCalcSingle(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"sample_id":"well-7","arsenic":0.02}`)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/calculations/single", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		SampleID        string  `json:"sample_id"`
		HPI             float64 `json:"hpi_value"`
		HEI             float64 `json:"hei_value"`
		QualityCategory string  `json:"quality_category"`
		Notes           string  `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "well-7", res.SampleID)
	assert.InDelta(t, 200, res.HPI, 1e-9)
	assert.InDelta(t, 2, res.HEI, 1e-9)
	assert.Equal(t, "very_poor", res.QualityCategory)
	assert.Equal(t, "computed from arsenic", res.Notes)
}

func TestCalcSingleSchemaRejections(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	for name, payload := range map[string]string{
		"missing sample_id": `{"arsenic":0.01}`,
		"no metals":         `{"sample_id":"x"}`,
		"negative value":    `{"sample_id":"x","arsenic":-1}`,
		"non-numeric value": `{"sample_id":"x","arsenic":"high"}`,
		"unknown metal":     `{"sample_id":"x","kryptonite":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			body := bytes.NewBufferString(payload)
			w := doRequest(t, srv, http.MethodPost, "/api/v1/calculations/single", body, "application/json")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCalcBatch(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"samples":[
		{"sample_id":"a","iron":0.3},
		{"sample_id":"b"}
	]}`)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/calculations/batch", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var summary calc.BatchSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Len(t, summary.Results, 1)
	assert.Len(t, summary.Failed, 1)
	assert.InDelta(t, 50, summary.SuccessRate, 1e-9)
}

func TestCalcYearRejectsImplausibleYear(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/calculations/year/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/api/v1/calculations/year/123", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStandards(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/calculations/standards", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Method     string             `json:"calculation_method"`
		Metals     []map[string]any   `json:"metals"`
		Thresholds map[string]float64 `json:"thresholds"`
		Categories []string           `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "hpi-simplified-v1", res.Method)
	assert.Len(t, res.Metals, 9)
	assert.Len(t, res.Categories, 4)
}

func TestListSamplesPassesFilter(t *testing.T) {
	srv, _, samples, _ := newTestServer(t)
	samples.samples = []*entity.SampleRecord{{SerialNumber: 1, State: "Telangana"}}

	w := doRequest(t, srv, http.MethodGet, "/api/v1/samples?year=2023&search=medak&page=2&page_size=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2023, samples.filter.Year)
	assert.Equal(t, "medak", samples.filter.Search)
	assert.Equal(t, 2, samples.filter.Page)
	assert.Equal(t, 10, samples.filter.PageSize)
}

func TestMapPointsStats(t *testing.T) {
	srv, _, _, indices := newTestServer(t)
	indices.points = []*entity.MapPoint{
		{Sample: entity.GroundWaterRef(1), HPIValue: 150, QualityCategory: constants.QualityVeryPoor},
		{Sample: entity.GroundWaterRef(2), HPIValue: 50, QualityCategory: constants.QualityPoor},
	}

	w := doRequest(t, srv, http.MethodGet, "/api/v1/map/points", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Count int `json:"count"`
		Stats struct {
			AvgHPI       float64        `json:"avg_hpi"`
			Distribution map[string]int `json:"quality_distribution"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	assert.InDelta(t, 100, res.Stats.AvgHPI, 1e-9)
	assert.Equal(t, 1, res.Stats.Distribution["very_poor"])
}

func TestReportSummary(t *testing.T) {
	srv, _, _, indices := newTestServer(t)
	indices.points = []*entity.MapPoint{
		{Sample: entity.GroundWaterRef(1), HPIValue: 150, QualityCategory: constants.QualityVeryPoor},
		{Sample: entity.GroundWaterRef(2), HPIValue: 90, QualityCategory: constants.QualityVeryPoor},
		{Sample: entity.GroundWaterRef(3), HPIValue: 30, QualityCategory: constants.QualityGood},
	}

	w := doRequest(t, srv, http.MethodGet, "/api/v1/reports/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Total        int            `json:"total_indices"`
		AvgHPI       float64        `json:"average_hpi"`
		MinHPI       float64        `json:"min_hpi"`
		MaxHPI       float64        `json:"max_hpi"`
		Hotspots     int            `json:"hotspot_count"`
		Distribution map[string]int `json:"quality_distribution"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Total)
	assert.InDelta(t, 90, res.AvgHPI, 1e-9)
	assert.InDelta(t, 30, res.MinHPI, 1e-9)
	assert.InDelta(t, 150, res.MaxHPI, 1e-9)
	assert.Equal(t, 1, res.Hotspots)
	assert.Equal(t, map[string]int{"very_poor": 2, "good": 1}, res.Distribution)
}

func TestMapPointsDetailLevels(t *testing.T) {
	srv, _, _, indices := newTestServer(t)
	indices.points = []*entity.MapPoint{
		{Sample: entity.GroundWaterRef(1), HPIValue: 42, State: "Telangana", Year: 2023},
	}

	var res struct {
		Points []map[string]any `json:"points"`
	}

	w := doRequest(t, srv, http.MethodGet, "/api/v1/map/points?detail=minimal", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Points, 1)
	assert.NotContains(t, res.Points[0], "state")
	assert.NotContains(t, res.Points[0], "calculation_year")

	w = doRequest(t, srv, http.MethodGet, "/api/v1/map/points?detail=full", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Points, 1)
	assert.Equal(t, "Telangana", res.Points[0]["state"])
	assert.EqualValues(t, 2023, res.Points[0]["calculation_year"])

	w = doRequest(t, srv, http.MethodGet, "/api/v1/map/points?detail=everything", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHotspots(t *testing.T) {
	srv, _, _, indices := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/map/hotspots", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 100, indices.threshold, 1e-9)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/map/hotspots?threshold=75", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 75, indices.threshold, 1e-9)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/map/hotspots?threshold=-5", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobStatus(t *testing.T) {
	srv, ingestor, _, _ := newTestServer(t)
	jobID := uuid.New()
	ingestor.job = &jobs.Job{ID: jobID, Status: constants.JobStatusRunning}

	w := doRequest(t, srv, http.MethodGet, "/api/v1/ingestion/jobs/"+jobID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/ingestion/jobs/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/ingestion/jobs/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestDocumentUpload(t *testing.T) {
	srv, ingestor, _, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "survey.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("S.No,State\n1,Telangana\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("pages", "all"))
	require.NoError(t, mw.Close())

	w := doRequest(t, srv, http.MethodPost, "/api/v1/ingestion/documents", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "survey.csv", ingestor.src.Name)
	assert.Equal(t, constants.CSV, ingestor.src.Format)
	assert.Equal(t, "all", ingestor.src.Pages)
}

func TestIngestDocumentRejectsUnknownExtension(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(t, srv, http.MethodPost, "/api/v1/ingestion/documents", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "unsupported file type"))
}

func TestIngestDocumentAsync(t *testing.T) {
	srv, ingestor, _, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "survey.xlsx")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x50, 0x4b})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(t, srv, http.MethodPost, "/api/v1/ingestion/documents/async", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusAccepted, w.Code)

	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, ingestor.jobID.String(), res["job_id"])
	assert.Equal(t, "PENDING", res["status"])
}

func TestExportIndices(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/reports/indices.xlsx?year=2023", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "computed-indices-2023.xlsx")
}
