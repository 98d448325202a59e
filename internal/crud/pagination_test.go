package crud

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		body       map[string]any
		wantPage   int
		wantRows   int
		wantOffset int
	}{
		{name: "defaults", wantPage: 1, wantRows: 20, wantOffset: 0},
		{name: "query values", query: url.Values{"page": {"3"}, "rows": {"10"}}, wantPage: 3, wantRows: 10, wantOffset: 20},
		{name: "body values", body: map[string]any{"page": float64(2), "rows": float64(5)}, wantPage: 2, wantRows: 5, wantOffset: 5},
		{name: "query wins over body", query: url.Values{"rows": {"7"}}, body: map[string]any{"rows": float64(50)}, wantPage: 1, wantRows: 7, wantOffset: 0},
		{name: "zero rows falls back", query: url.Values{"rows": {"0"}}, wantPage: 1, wantRows: 20, wantOffset: 0},
		{name: "negative page falls back", query: url.Values{"page": {"-4"}, "rows": {"15"}}, wantPage: 1, wantRows: 15, wantOffset: 0},
		{name: "non numeric falls back", query: url.Values{"page": {"abc"}, "rows": {"x"}}, wantPage: 1, wantRows: 20, wantOffset: 0},
		{name: "empty query value does not reach body", query: url.Values{"rows": {""}}, body: map[string]any{"rows": float64(9)}, wantPage: 1, wantRows: 20, wantOffset: 0},
		{name: "fractional rows truncated", query: url.Values{"rows": {"12.7"}, "page": {"2"}}, wantPage: 2, wantRows: 12, wantOffset: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(NewDTO(tt.query, tt.body), Limits{})

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantRows, p.Rows)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantRows, p.Limit())
		})
	}
}

func TestPaginateCustomDefault(t *testing.T) {
	p := Paginate(NewDTO(nil, nil), Limits{DefaultRows: 50})
	assert.Equal(t, 50, p.Rows)

	p = Paginate(NewDTO(nil, nil), Limits{})
	assert.Equal(t, DefaultRows, p.Rows)

	p = Paginate(NewDTO(nil, nil), Limits{DefaultRows: 50, MaxRows: 30})
	assert.Equal(t, 30, p.Rows)
}

func TestPaginateMaxRows(t *testing.T) {
	p := Paginate(NewDTO(url.Values{"rows": {"5000"}}, nil), Limits{})
	assert.Equal(t, DefaultMaxRows, p.Rows)

	p = Paginate(NewDTO(url.Values{"rows": {"101"}}, nil), Limits{MaxRows: 100})
	assert.Equal(t, 100, p.Rows)
}

func TestPaginateHugePageDoesNotOverflow(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		rows     string
		wantPage int
	}{
		{name: "product overflows", page: "4611686018427387904", rows: "4", wantPage: math.MaxInt / 4},
		{name: "beyond int64", page: "1e30", rows: "20", wantPage: math.MaxInt / 20},
		{name: "max int", page: "9223372036854775807", rows: "1", wantPage: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(NewDTO(url.Values{"page": {tt.page}, "rows": {tt.rows}}, nil), Limits{})

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Positive(t, p.Offset())
			assert.GreaterOrEqual(t, math.MaxInt-p.Offset(), p.Limit())
		})
	}
}

func TestPageCount(t *testing.T) {
	p := Pagination{Page: 1, Rows: 20}

	assert.Equal(t, int64(0), p.PageCount(0))
	assert.Equal(t, int64(1), p.PageCount(1))
	assert.Equal(t, int64(1), p.PageCount(20))
	assert.Equal(t, int64(2), p.PageCount(21))
	assert.Equal(t, int64(5), p.PageCount(100))
}
