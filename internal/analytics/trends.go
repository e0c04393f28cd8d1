package analytics

import "context"

// Trends are period-over-period percentage changes shown next to each metric.
type Trends struct {
	SalesTrend   float64 `json:"salesTrend"`
	RevenueTrend float64 `json:"revenueTrend"`
	AOVTrend     float64 `json:"aovTrend"`
	OrdersTrend  float64 `json:"ordersTrend"`
}

// TrendSource computes trends for the current metrics.
type TrendSource interface {
	Trends(ctx context.Context, filter FilterSet, current Metrics) (Trends, error)
}

// FlatTrends reports no movement. It performs no historical comparison and
// stands in until a period-over-period source exists.
type FlatTrends struct{}

// Trends implements TrendSource.
func (FlatTrends) Trends(context.Context, FilterSet, Metrics) (Trends, error) {
	return Trends{}, nil
}
