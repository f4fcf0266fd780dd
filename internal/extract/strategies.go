package extract

import (
	"regexp"
	"strings"
)

// The two per-page parsing strategies mirror the extraction tools they were
// tuned against: latticeRows handles ruled tables whose cell borders survive
// text conversion, streamRows handles borderless tables where columns are
// separated by runs of whitespace.

var (
	latticeSep = regexp.MustCompile(`[|│┃]`)
	streamSep  = regexp.MustCompile(`\s{2,}`)
)

// latticeRows splits page text on ruled-table separators. Returns nil when
// the page carries no ruled table.
func latticeRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if !latticeSep.MatchString(line) {
			continue
		}
		parts := latticeSep.Split(line, -1)
		cells := make([]string, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}
		// Ruled lines start and end with a border character.
		if len(cells) > 0 && cells[0] == "" {
			cells = cells[1:]
		}
		if len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) >= 2 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// streamRows splits page text on whitespace gaps. Lines with fewer than two
// columns are page furniture (titles, footers) and are skipped.
func streamRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := streamSep.Split(line, -1)
		if len(parts) < 2 {
			continue
		}
		cells := make([]string, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}
		rows = append(rows, cells)
	}
	return rows
}
