package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/servify/servify-dashboard/internal/shared"
)

// CategoryBreakdown aggregates one product subcategory. A nil subcategory
// groups records without one.
type CategoryBreakdown struct {
	ProductSubcategory *string `json:"productSubcategory"`
	Sales              float64 `json:"sales"`
	Revenue            float64 `json:"revenue"`
	OrderCount         int64   `json:"orderCount"`
}

// GetBreakdown groups the filtered records by product subcategory, ordered by
// summed sales descending.
func (s *Service) GetBreakdown(ctx context.Context, filter FilterSet) ([]CategoryBreakdown, error) {
	now := s.now()
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.Breakdown(ctx, filterParams(filter.Predicates(now)))
		if err != nil {
			return nil, fmt.Errorf("%w: breakdown: %w", shared.ErrDependency, err)
		}
		items := make([]CategoryBreakdown, 0, len(rows))
		for _, row := range rows {
			item := CategoryBreakdown{
				Sales:      row.Sales,
				Revenue:    row.Revenue,
				OrderCount: row.OrderCount,
			}
			if row.ProductSubcategory.Valid {
				name := row.ProductSubcategory.String
				item.ProductSubcategory = &name
			}
			items = append(items, item)
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Sales > items[j].Sales })
		return items, nil
	}

	items := []CategoryBreakdown{}
	if err := s.cache.FetchJSON(ctx, &items, loader, filterKeyParts("breakdown", filter, now)...); err != nil {
		return nil, err
	}
	return items, nil
}
