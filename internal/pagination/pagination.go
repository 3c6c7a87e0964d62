// Package pagination slices ordered collections into fixed-size pages.
package pagination

import "strconv"

// Page describes one page of an ordered collection. Offset and Limit are
// ready to feed into a repository query.
type Page struct {
	Number     int
	Size       int
	Offset     int
	Limit      int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// New computes page metadata for a collection of totalItems items.
// The requested page is 1-based; out-of-range values clamp to the nearest
// valid page instead of erroring. An empty collection yields a single
// empty page.
func New(totalItems, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Page{
		Number:     page,
		Size:       pageSize,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ParsePageParam parses a ?page= query value. Anything unparsable counts
// as page 1.
func ParsePageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NextPage returns the 1-based number of the following page.
func (p Page) NextPage() int { return p.Number + 1 }

// PrevPage returns the 1-based number of the preceding page.
func (p Page) PrevPage() int { return p.Number - 1 }
