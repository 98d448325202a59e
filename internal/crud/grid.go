package crud

import (
	"context"
	"encoding/json"
	"fmt"
)

// UserAccessLevelsKey is the row key holding the per-row AccessLevels.
const UserAccessLevelsKey = "userAccessLevels"

// Grid is the paginated search response consumed by list UIs.
type Grid struct {
	Count        int64 `json:"count"`
	ItemsPerPage int   `json:"itemsPerPage"`
	Page         int   `json:"page"`
	PageCount    int64 `json:"pageCount"`
	Items        []any `json:"items"`
}

// AccessLevels tells the client which row actions the caller may use.
type AccessLevels struct {
	Edit bool `json:"edit"`
	View bool `json:"view"`
	Del  bool `json:"del"`
}

// QueryFunc builds the search query for a grid.
type QueryFunc[T any] func(ctx context.Context, dto *DTO) (Query[T], error)

// RowPreparer turns a fetched page into response items.
type RowPreparer[T any] func(ctx context.Context, items []T) ([]any, error)

// AccessLevelFunc computes the access levels of a single row.
type AccessLevelFunc[T any] func(ctx context.Context, item T) AccessLevels

// GridOptions selects the search query and row preparer used by GetGridData.
type GridOptions[T any] struct {
	Query       QueryFunc[T]
	PrepareRows RowPreparer[T]
}

// Mapper is implemented by items that know their own row representation.
type Mapper interface {
	ToMap() map[string]any
}

// GetGridData runs the paginated search: it builds the query, applies the
// window from dto and shapes the Grid.
func GetGridData[T any](ctx context.Context, dto *DTO, limits Limits, opts GridOptions[T]) (*Grid, error) {
	if opts.Query == nil {
		return nil, fmt.Errorf("grid: no search query configured")
	}
	if opts.PrepareRows == nil {
		opts.PrepareRows = RawRows[T]
	}

	query, err := opts.Query(ctx, dto)
	if err != nil {
		return nil, err
	}

	p := Paginate(dto, limits)

	count, err := query.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("grid: count: %w", err)
	}

	items, err := query.Fetch(ctx, p.Offset(), p.Limit())
	if err != nil {
		return nil, fmt.Errorf("grid: fetch: %w", err)
	}

	rows, err := opts.PrepareRows(ctx, items)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []any{}
	}

	return &Grid{
		Count:        count,
		ItemsPerPage: p.Rows,
		Page:         p.Page,
		PageCount:    p.PageCount(count),
		Items:        rows,
	}, nil
}

// UserAccessLevels asks the checker for the edit/view/delete permissions of item.
func UserAccessLevels[T any](checker PermissionChecker[T]) AccessLevelFunc[T] {
	return func(ctx context.Context, item T) AccessLevels {
		return AccessLevels{
			Edit: checker.CheckUserEditPermission(ctx, item),
			View: checker.CheckUserViewPermission(ctx, item),
			Del:  checker.CheckUserDeletePermission(ctx, item),
		}
	}
}

// PrepareGridRows is the default row preparer: every item becomes a JSON object
// with an extra userAccessLevels entry.
func PrepareGridRows[T any](levels AccessLevelFunc[T]) RowPreparer[T] {
	return func(ctx context.Context, items []T) ([]any, error) {
		rows := make([]any, 0, len(items))

		for i, item := range items {
			row, err := toRow(item)
			if err != nil {
				return nil, fmt.Errorf("grid: prepare row %d: %w", i, err)
			}
			row[UserAccessLevelsKey] = levels(ctx, item)
			rows = append(rows, row)
		}

		return rows, nil
	}
}

// RawRows returns the items as they are.
func RawRows[T any](_ context.Context, items []T) ([]any, error) {
	rows := make([]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, item)
	}
	return rows, nil
}

func toRow(item any) (map[string]any, error) {
	if m, ok := item.(Mapper); ok {
		row := m.ToMap()
		if row == nil {
			row = map[string]any{}
		}
		return row, nil
	}

	if m, ok := item.(map[string]any); ok {
		row := make(map[string]any, len(m)+1)
		for k, v := range m {
			row[k] = v
		}
		return row, nil
	}

	b, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	var row map[string]any
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, fmt.Errorf("item is not an object: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("item is not an object")
	}

	return row, nil
}
