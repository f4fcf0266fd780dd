package extract

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// writeTemp spills uploaded document bytes to disk so the external converter
// can read them; callers must invoke cleanup.
func (e *TableExtractor) writeTemp(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (e *TableExtractor) pdfPageCount(ctx context.Context, path string) (int, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return 0, fmt.Errorf("pdftotext page count: %w (%s)", err, truncate(string(errb), 256))
	}
	// pdftotext terminates every page with a form feed, the last one
	// included, so an N-page document carries exactly N of them.
	text := strings.TrimSuffix(string(out), "\f")
	return 1 + strings.Count(text, "\f"), nil
}

// extractPDFPage converts one page to text and tries the lattice strategy
// first, falling back to stream detection when no ruled table is found.
func (e *TableExtractor) extractPDFPage(ctx context.Context, path string, page int) ([][]string, error) {
	p := strconv.Itoa(page)
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", p, "-l", p, path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext page %d: %w (%s)", page, err, truncate(string(errb), 256))
	}

	text := string(out)
	rows := latticeRows(text)
	if len(rows) == 0 {
		e.logger.Debug("lattice detection found nothing, retrying with stream mode", "page", page)
		rows = streamRows(text)
	}
	return rows, nil
}
