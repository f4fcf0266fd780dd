package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// csvRows parses CSV bytes into raw rows, tolerating real-world files:
// variable field counts, lazy quoting, and unparseable lines (skipped with a
// warning rather than aborting the batch).
func (e *TableExtractor) csvRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			e.logger.Warn("skipping unparseable csv line", "line", line, "error", err)
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
