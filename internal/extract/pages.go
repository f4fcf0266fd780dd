package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePageSelector expands a page-selection spec into 1-based page numbers.
// Grammar: "all", "N", or comma-separated terms where each term is "N" or
// "N-M" (inclusive range). Pages outside 1..total are rejected.
func ParsePageSelector(spec string, total int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "all") {
		pages := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
		return pages, nil
	}

	seen := make(map[int]struct{})
	var pages []int
	add := func(p int) error {
		if p < 1 || p > total {
			return fmt.Errorf("page %d out of range 1..%d", p, total)
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			pages = append(pages, p)
		}
		return nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty term in page selector %q", spec)
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			if end < start {
				return nil, fmt.Errorf("invalid page range %q: end before start", part)
			}
			for p := start; p <= end; p++ {
				if err := add(p); err != nil {
					return nil, err
				}
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q: %w", part, err)
		}
		if err := add(p); err != nil {
			return nil, err
		}
	}
	return pages, nil
}
