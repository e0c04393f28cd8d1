package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/servify/servify-dashboard/internal/shared"
)

// Metrics are the dataset-wide totals for a filter set.
type Metrics struct {
	TotalSales        float64 `json:"totalSales"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int64   `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	Trends            Trends  `json:"trends"`
}

// GetMetrics aggregates the filtered records. An empty set yields zeros.
func (s *Service) GetMetrics(ctx context.Context, filter FilterSet) (Metrics, error) {
	now := s.now()
	loader := func(ctx context.Context) (any, error) {
		row, err := s.repo.Totals(ctx, filterParams(filter.Predicates(now)))
		if err != nil {
			return Metrics{}, fmt.Errorf("%w: totals: %w", shared.ErrDependency, err)
		}
		return Metrics{
			TotalSales:        finite(row.TotalSales),
			TotalRevenue:      finite(row.TotalRevenue),
			TotalOrders:       row.TotalOrders,
			AverageOrderValue: finite(row.AverageOrderValue),
		}, nil
	}

	var metrics Metrics
	if err := s.cache.FetchJSON(ctx, &metrics, loader, filterKeyParts("metrics", filter, now)...); err != nil {
		return Metrics{}, err
	}
	if metrics.TotalOrders == 0 {
		metrics.AverageOrderValue = 0
	}

	trends, err := s.trends.Trends(ctx, filter, metrics)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: trends: %w", shared.ErrDependency, err)
	}
	metrics.Trends = trends
	return metrics, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
