package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaguard/hmpi-service/internal/common"
)

func cellsOfWidth(n int, prefix string) []string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return cells
}

func TestReconcileTruncatesSurplusColumns(t *testing.T) {
	// 26 extracted columns against the 24-column schema: surplus discarded,
	// first data row (misdetected header) dropped.
	rows := []Row{
		{Page: 1, Cells: cellsOfWidth(26, "h")},
		{Page: 1, Cells: cellsOfWidth(26, "a")},
		{Page: 2, Cells: cellsOfWidth(26, "b")},
	}
	recs, err := Reconcile(rows)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	for _, rec := range recs {
		assert.Len(t, rec, len(CoreColumns))
		for _, name := range CoreColumns {
			_, ok := rec[name]
			assert.True(t, ok, "missing column %q", name)
		}
	}
	assert.Equal(t, "a0", recs[0]["S.No"])
	assert.Equal(t, "a23", recs[0]["U (ppb)"])
	// Columns 24 and 25 were surplus.
	for _, v := range recs[0] {
		assert.NotEqual(t, "a24", v)
		assert.NotEqual(t, "a25", v)
	}
}

func TestReconcilePadsShortRows(t *testing.T) {
	rows := []Row{
		{Page: 1, Cells: cellsOfWidth(24, "h")},
		{Page: 1, Cells: cellsOfWidth(20, "a")}, // ragged row within an accepted doc
	}
	recs, err := Reconcile(rows)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0]["U (ppb)"])
	assert.Equal(t, "a0", recs[0]["S.No"])
}

func TestReconcileRejectsNarrowDocuments(t *testing.T) {
	rows := []Row{
		{Page: 1, Cells: cellsOfWidth(10, "h")},
		{Page: 1, Cells: cellsOfWidth(10, "a")},
	}
	_, err := Reconcile(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchemaMismatch))
}

func TestReconcileEmpty(t *testing.T) {
	_, err := Reconcile(nil)
	assert.True(t, errors.Is(err, common.ErrNoTables))
}
