package repository

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquaguard/hmpi-service/internal/common"
	"github.com/aquaguard/hmpi-service/internal/entity"
)

// MapFilter narrows a map-point listing.
type MapFilter struct {
	Year     int
	Page     int // 1-based
	PageSize int
}

type IndexStore interface {
	// BulkUpsert stores computed indices. With force, an existing record for
	// the same (sample, method) is replaced in place; without it the prior
	// record wins. Returns the number of rows written.
	BulkUpsert(ctx context.Context, indices []*entity.ComputedIndex, force bool) (int, error)
	// ExistingSampleKeys returns which of the given sample refs already have
	// an index for the method.
	ExistingSampleKeys(ctx context.Context, kind entity.SampleKind, keys []string, method string) (map[string]struct{}, error)
	// ListMapPoints returns one page of map points joined with sample
	// coordinates, newest first, plus the total count.
	ListMapPoints(ctx context.Context, f MapFilter) ([]*entity.MapPoint, int, error)
	// Hotspots returns all points above the HPI threshold, worst first.
	Hotspots(ctx context.Context, threshold float64) ([]*entity.MapPoint, error)
}

type indexStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIndexStore(pool *pgxpool.Pool, logger *slog.Logger) IndexStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &indexStore{pool: pool, logger: logger}
}

const upsertForceSQL = `INSERT INTO computed_indices
	(sample_kind, sample_id, hpi_value, hei_value, cd_value, mi_value, quality_category, calculation_method, computed_at, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (sample_kind, sample_id, calculation_method) DO UPDATE SET
		hpi_value = EXCLUDED.hpi_value,
		hei_value = EXCLUDED.hei_value,
		cd_value = EXCLUDED.cd_value,
		mi_value = EXCLUDED.mi_value,
		quality_category = EXCLUDED.quality_category,
		computed_at = EXCLUDED.computed_at,
		notes = EXCLUDED.notes`

const upsertKeepSQL = `INSERT INTO computed_indices
	(sample_kind, sample_id, hpi_value, hei_value, cd_value, mi_value, quality_category, calculation_method, computed_at, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (sample_kind, sample_id, calculation_method) DO NOTHING`

func (s *indexStore) BulkUpsert(ctx context.Context, indices []*entity.ComputedIndex, force bool) (int, error) {
	if len(indices) == 0 {
		return 0, nil
	}
	sql := upsertKeepSQL
	if force {
		sql = upsertForceSQL
	}

	batch := &pgx.Batch{}
	for _, ci := range indices {
		batch.Queue(sql,
			ci.Sample.Kind, ci.Sample.Key(), ci.HPIValue, ci.HEIValue, ci.CdValue, ci.MIValue,
			ci.QualityCategory, ci.CalculationMethod, ci.ComputedAt, ci.Notes,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer func() {
		if err := br.Close(); err != nil {
			s.logger.Error("failed to close batch results", "error", err)
		}
	}()

	written := 0
	for range indices {
		tag, err := br.Exec()
		if err != nil {
			return written, common.WrapError(err, "upsert computed index")
		}
		written += int(tag.RowsAffected())
	}
	s.logger.Info("stored computed indices", "attempted", len(indices), "written", written, "force", force)
	return written, nil
}

func (s *indexStore) ExistingSampleKeys(ctx context.Context, kind entity.SampleKind, keys []string, method string) (map[string]struct{}, error) {
	if len(keys) == 0 {
		return map[string]struct{}{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT sample_id FROM computed_indices
		 WHERE sample_kind = $1 AND calculation_method = $2 AND sample_id = ANY($3)`,
		kind, method, keys)
	if err != nil {
		return nil, common.WrapError(err, "query existing indices")
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, common.WrapError(err, "scan sample key")
		}
		existing[key] = struct{}{}
	}
	return existing, rows.Err()
}

const mapPointColumns = `ci.sample_kind, ci.sample_id, gws.latitude, gws.longitude, ci.hpi_value,
	gws.location, gws.state, gws.district, ci.quality_category, ci.computed_at, gws.year`

func (s *indexStore) ListMapPoints(ctx context.Context, f MapFilter) ([]*entity.MapPoint, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 500
	}

	where := `FROM computed_indices ci
		JOIN ground_water_samples gws
			ON ci.sample_kind = 'ground_water' AND ci.sample_id = gws.s_no::text
		WHERE ($1 = 0 OR gws.year = $1)`

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) `+where, f.Year).Scan(&total); err != nil {
		return nil, 0, common.WrapError(err, "count map points")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+mapPointColumns+` `+where+` ORDER BY ci.computed_at DESC LIMIT $2 OFFSET $3`,
		f.Year, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, 0, common.WrapError(err, "list map points")
	}
	defer rows.Close()

	points, err := scanMapPoints(rows)
	if err != nil {
		return nil, 0, err
	}
	return points, total, nil
}

func (s *indexStore) Hotspots(ctx context.Context, threshold float64) ([]*entity.MapPoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+mapPointColumns+` FROM computed_indices ci
		 JOIN ground_water_samples gws
			ON ci.sample_kind = 'ground_water' AND ci.sample_id = gws.s_no::text
		 WHERE ci.hpi_value > $1
		 ORDER BY ci.hpi_value DESC`, threshold)
	if err != nil {
		return nil, common.WrapError(err, "list hotspots")
	}
	defer rows.Close()
	return scanMapPoints(rows)
}

func scanMapPoints(rows pgx.Rows) ([]*entity.MapPoint, error) {
	var out []*entity.MapPoint
	for rows.Next() {
		p := &entity.MapPoint{}
		var sampleID string
		if err := rows.Scan(
			&p.Sample.Kind, &sampleID, &p.Latitude, &p.Longitude, &p.HPIValue,
			&p.LocationName, &p.State, &p.District, &p.QualityCategory, &p.ComputedAt, &p.Year,
		); err != nil {
			return nil, common.WrapError(err, "scan map point")
		}
		switch p.Sample.Kind {
		case entity.SampleKindGroundWater:
			// sample_id stores the serial number as text for this variant.
			if sNo, err := strconv.Atoi(sampleID); err == nil {
				p.Sample.SerialNumber = sNo
			}
		case entity.SampleKindGeneric:
			p.Sample.SampleID = sampleID
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
