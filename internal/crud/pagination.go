package crud

import "math"

const (
	// DefaultRows is the page size used when the request does not carry a usable "rows".
	DefaultRows = 20

	// DefaultMaxRows caps "rows" when no other ceiling is configured.
	DefaultMaxRows = 1000

	// DefaultPage is the page used when the request does not carry a usable "page".
	DefaultPage = 1
)

// Limits are the page size bounds applied to every search.
type Limits struct {
	DefaultRows int
	MaxRows     int
}

// normalized fills unset bounds and keeps DefaultRows within MaxRows.
func (l Limits) normalized() Limits {
	if l.MaxRows < 1 {
		l.MaxRows = DefaultMaxRows
	}
	if l.DefaultRows < 1 {
		l.DefaultRows = DefaultRows
	}
	l.DefaultRows = min(l.DefaultRows, l.MaxRows)
	return l
}

// Pagination is the page window requested by a search.
type Pagination struct {
	Page int
	Rows int
}

// Paginate reads "rows" and "page" from dto (query string first, then body).
//
// Missing, non-numeric or non-positive values fall back to the defaults, which
// keeps rows away from zero (page count division) and page away from negatives.
// Rows are capped at limits.MaxRows. Page is capped so that the offset of the
// page still fits in an int; such a page is simply empty.
func Paginate(dto *DTO, limits Limits) Pagination {
	limits = limits.normalized()

	rows := dto.Int("rows", limits.DefaultRows)
	if rows < 1 {
		rows = limits.DefaultRows
	}
	rows = min(rows, limits.MaxRows)

	page := dto.Int("page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	page = min(page, math.MaxInt/rows)

	return Pagination{Page: page, Rows: rows}
}

// Offset is the index of the first row of the page, never negative.
func (p Pagination) Offset() int {
	start := p.Page*p.Rows - p.Rows
	if start < 0 {
		return 0
	}
	return start
}

// Limit is the maximum number of rows of the page.
func (p Pagination) Limit() int {
	return p.Rows
}

// PageCount is ceil(count / rows).
func (p Pagination) PageCount(count int64) int64 {
	if p.Rows < 1 || count <= 0 {
		return 0
	}
	rows := int64(p.Rows)
	return (count + rows - 1) / rows
}
