package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/entity"
)

// SampleFilter narrows a sample listing. Zero values mean "no filter".
type SampleFilter struct {
	Year     int
	Search   string // matches state, district and location
	Page     int    // 1-based
	PageSize int
}

type SampleStore interface {
	// BulkInsertIgnoreConflicts inserts records, silently skipping rows whose
	// serial number already exists, and returns the number created.
	BulkInsertIgnoreConflicts(ctx context.Context, recs []*entity.SampleRecord) (int, error)
	// FilterExistingSerials returns the subset of serials already persisted.
	FilterExistingSerials(ctx context.Context, serials []int) (map[int]struct{}, error)
	// ListSamples returns one page ordered by serial number plus the total count.
	ListSamples(ctx context.Context, f SampleFilter) ([]*entity.SampleRecord, int, error)
}

type sampleStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewSampleStore(pool *pgxpool.Pool, logger *slog.Logger) SampleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &sampleStore{pool: pool, logger: logger}
}

const sampleColumns = `s_no, state, district, location, longitude, latitude, year,
	ph, ec_us_cm, co3_mg_l, hco3_mg_l, cl_mg_l, f_mg_l, so4_mg_l, no3_mg_l, po4_mg_l,
	total_hardness_mg_l, ca_mg_l, mg_mg_l, na_mg_l, k_mg_l, fe_ppm, as_ppb, u_ppb`

const insertSampleSQL = `INSERT INTO ground_water_samples (` + sampleColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	ON CONFLICT (s_no) DO NOTHING`

func (s *sampleStore) BulkInsertIgnoreConflicts(ctx context.Context, recs []*entity.SampleRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(insertSampleSQL,
			r.SerialNumber, r.State, r.District, r.Location, r.Longitude, r.Latitude, r.Year,
			r.PH, r.ECuScm, r.CO3MgL, r.HCO3MgL, r.ClMgL, r.FMgL, r.SO4MgL, r.NO3MgL, r.PO4MgL,
			r.HardnessMgL, r.CaMgL, r.MgMgL, r.NaMgL, r.KMgL, r.FePPM, r.AsPPB, r.UPPB,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer func() {
		if err := br.Close(); err != nil {
			s.logger.Error("failed to close batch results", "error", err)
		}
	}()

	created := 0
	for range recs {
		tag, err := br.Exec()
		if err != nil {
			return created, common.WrapError(err, "bulk insert samples")
		}
		created += int(tag.RowsAffected())
	}
	s.logger.Info("bulk insert complete", "attempted", len(recs), "created", created)
	return created, nil
}

func (s *sampleStore) FilterExistingSerials(ctx context.Context, serials []int) (map[int]struct{}, error) {
	if len(serials) == 0 {
		return map[int]struct{}{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT s_no FROM ground_water_samples WHERE s_no = ANY($1)`, serials)
	if err != nil {
		s.logger.Error("failed to query existing serials", "error", err)
		return nil, common.WrapError(err, "filter existing serials")
	}
	defer rows.Close()

	existing := make(map[int]struct{})
	for rows.Next() {
		var sNo int
		if err := rows.Scan(&sNo); err != nil {
			return nil, common.WrapError(err, "scan serial")
		}
		existing[sNo] = struct{}{}
	}
	return existing, rows.Err()
}

func (s *sampleStore) ListSamples(ctx context.Context, f SampleFilter) ([]*entity.SampleRecord, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}

	where := `WHERE ($1 = 0 OR year = $1)
		AND ($2 = '' OR state ILIKE '%' || $2 || '%' OR district ILIKE '%' || $2 || '%' OR location ILIKE '%' || $2 || '%')`

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ground_water_samples `+where, f.Year, f.Search).Scan(&total); err != nil {
		return nil, 0, common.WrapError(err, "count samples")
	}

	// Ordered by serial number for deterministic pagination.
	q := fmt.Sprintf(`SELECT %s FROM ground_water_samples %s ORDER BY s_no LIMIT $3 OFFSET $4`,
		sampleColumns, where)
	rows, err := s.pool.Query(ctx, q, f.Year, f.Search, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		s.logger.Error("failed to list samples", "year", f.Year, "error", err)
		return nil, 0, common.WrapError(err, "list samples")
	}
	defer rows.Close()

	var out []*entity.SampleRecord
	for rows.Next() {
		r := &entity.SampleRecord{}
		if err := rows.Scan(
			&r.SerialNumber, &r.State, &r.District, &r.Location, &r.Longitude, &r.Latitude, &r.Year,
			&r.PH, &r.ECuScm, &r.CO3MgL, &r.HCO3MgL, &r.ClMgL, &r.FMgL, &r.SO4MgL, &r.NO3MgL, &r.PO4MgL,
			&r.HardnessMgL, &r.CaMgL, &r.MgMgL, &r.NaMgL, &r.KMgL, &r.FePPM, &r.AsPPB, &r.UPPB,
		); err != nil {
			return nil, 0, common.WrapError(err, "scan sample")
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
