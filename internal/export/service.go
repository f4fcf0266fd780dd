package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aquaguard/hmpi-service/internal/entity"
	"github.com/aquaguard/hmpi-service/internal/hmpi"
	"github.com/aquaguard/hmpi-service/internal/repository"
)

// PointLister is the slice of the index store the exporter reads from.
type PointLister interface {
	ListMapPoints(ctx context.Context, f repository.MapFilter) ([]*entity.MapPoint, int, error)
}

// Service is a tiny façade over the index store that produces XLSX bytes for reports.
type Service struct {
	points   PointLister
	pageSize int
	logger   *slog.Logger
}

func NewService(points PointLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{points: points, pageSize: 500, logger: logger}
}

// ExportIndicesXLSX returns an XLSX workbook (as bytes) with every computed
// index joined to its sample location. year == 0 exports all years.
func (s *Service) ExportIndicesXLSX(ctx context.Context, year int) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Computed Indices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Sample",
		"State",
		"District",
		"Location",
		"Latitude",
		"Longitude",
		"Year",
		"HPI",
		"Quality Category",
		"Method",
		"Computed At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	exported := 0
	for page := 1; ; page++ {
		points, _, err := s.points.ListMapPoints(ctx, repository.MapFilter{
			Year:     year,
			Page:     page,
			PageSize: s.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("query computed indices: %w", err)
		}
		if len(points) == 0 {
			break
		}

		for _, p := range points {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			write(1, p.Sample.Display())
			write(2, p.State)
			write(3, p.District)
			write(4, p.LocationName)
			write(5, p.Latitude)
			write(6, p.Longitude)
			write(7, p.Year)
			write(8, p.HPIValue)
			write(9, string(p.QualityCategory))
			write(10, hmpi.Method)
			if !p.ComputedAt.IsZero() {
				write(11, p.ComputedAt.Format("2006-01-02 15:04:05"))
			} else {
				write(11, "")
			}
			row++
			exported++
		}

		if len(points) < s.pageSize {
			break
		}
	}

	// Widen the text-heavy columns
	_ = f.SetColWidth(sheet, "A", "A", 18) // sample
	_ = f.SetColWidth(sheet, "B", "D", 22) // state/district/location
	_ = f.SetColWidth(sheet, "E", "F", 12) // coordinates
	_ = f.SetColWidth(sheet, "I", "J", 18) // category/method
	_ = f.SetColWidth(sheet, "K", "K", 20) // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"year", year,
		"rows", exported,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
