package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/extract"
	"github.com/aquaguard/hmpi-service/internal/jobs"
)

type fakeExtractor struct {
	result *extract.Result
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ extract.Source) (*extract.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// memStore keeps samples keyed by serial number, mimicking the conflict
// handling of the real store.
type memStore struct {
	records   map[int]*entity.SampleRecord
	lookupErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[int]*entity.SampleRecord{}}
}

func (m *memStore) FilterExistingSerials(_ context.Context, serials []int) (map[int]struct{}, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	out := map[int]struct{}{}
	for _, s := range serials {
		if _, ok := m.records[s]; ok {
			out[s] = struct{}{}
		}
	}
	return out, nil
}

func (m *memStore) BulkInsertIgnoreConflicts(_ context.Context, recs []*entity.SampleRecord) (int, error) {
	created := 0
	for _, r := range recs {
		if _, ok := m.records[r.SerialNumber]; ok {
			continue
		}
		m.records[r.SerialNumber] = r
		created++
	}
	return created, nil
}

func row(serial, lon, lat string) map[string]string {
	return map[string]string{
		"S.No":      serial,
		"State":     "Telangana",
		"District":  "Medak",
		"Location":  "Site " + serial,
		"Longitude": lon,
		"Latitude":  lat,
		"Year":      "2023",
		"As (ppb)":  "12.5",
	}
}

func testSource() extract.Source {
	return extract.Source{Name: "survey.pdf", Format: constants.PDF}
}

func TestIngestDocumentHappyPath(t *testing.T) {
	ex := &fakeExtractor{result: &extract.Result{
		Rows: []map[string]string{
			row("1", "78.1", "17.4"),
			row("2", "78.2", "17.5"),
			row("bad", "78.3", "17.6"),
		},
		PageCount: 2,
	}}
	store := newMemStore()
	o := NewBatchOrchestrator(ex, store, nil, nil)

	res, err := o.IngestDocument(context.Background(), testSource())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.SkippedDuplicates)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 2, res.Rejected[0].Index)
	assert.Len(t, store.records, 2)
}

func TestIngestDocumentIdempotent(t *testing.T) {
	ex := &fakeExtractor{result: &extract.Result{
		Rows: []map[string]string{row("1", "78.1", "17.4"), row("2", "78.2", "17.5")},
	}}
	store := newMemStore()
	o := NewBatchOrchestrator(ex, store, nil, nil)
	ctx := context.Background()

	first, err := o.IngestDocument(ctx, testSource())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := o.IngestDocument(ctx, testSource())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.SkippedDuplicates)
	assert.Len(t, store.records, 2)
}

func TestIngestDocumentLookupFailureFallsBackToStoreConflicts(t *testing.T) {
	ex := &fakeExtractor{result: &extract.Result{
		Rows: []map[string]string{row("1", "78.1", "17.4"), row("2", "78.2", "17.5")},
	}}
	store := newMemStore()
	store.records[1] = &entity.SampleRecord{SerialNumber: 1}
	store.lookupErr = errors.New("store offline")
	o := NewBatchOrchestrator(ex, store, nil, nil)

	res, err := o.IngestDocument(context.Background(), testSource())
	require.NoError(t, err)

	// Serial 1 slips past dedup but the insert drops it on conflict.
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.SkippedDuplicates)
}

func TestIngestDocumentExtractionError(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("pdftotext missing")}
	o := NewBatchOrchestrator(ex, newMemStore(), nil, nil)

	_, err := o.IngestDocument(context.Background(), testSource())
	assert.Error(t, err)
}

func TestIngestDocumentAsyncTracksJob(t *testing.T) {
	reg, err := jobs.NewRegistry(filepath.Join(t.TempDir(), "jobs.db"), nil)
	require.NoError(t, err)
	defer reg.Close()

	ex := &fakeExtractor{result: &extract.Result{
		Rows: []map[string]string{row("1", "78.1", "17.4")},
	}}
	o := NewBatchOrchestrator(ex, newMemStore(), reg, nil)
	ctx := context.Background()

	id, err := o.IngestDocumentAsync(ctx, testSource())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := o.JobStatus(ctx, id)
		return err == nil && job.Status == constants.JobStatusSucceeded
	}, 5*time.Second, 20*time.Millisecond)

	job, err := o.JobStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, job.Processed)
	assert.Equal(t, 1, job.Created)
	assert.Equal(t, "survey.pdf", job.SourceName)
}

func TestIngestDocumentAsyncRecordsFailure(t *testing.T) {
	reg, err := jobs.NewRegistry(filepath.Join(t.TempDir(), "jobs.db"), nil)
	require.NoError(t, err)
	defer reg.Close()

	ex := &fakeExtractor{err: errors.New("no tables found in document")}
	o := NewBatchOrchestrator(ex, newMemStore(), reg, nil)
	ctx := context.Background()

	id, err := o.IngestDocumentAsync(ctx, testSource())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := o.JobStatus(ctx, id)
		return err == nil && job.Status == constants.JobStatusFailed
	}, 5*time.Second, 20*time.Millisecond)

	job, err := o.JobStatus(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, job.Error, "no tables found")
}
