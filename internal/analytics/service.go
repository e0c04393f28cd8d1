package analytics

import (
	"context"
	"time"

	analyticsdb "github.com/servify/servify-dashboard/internal/analytics/db"
)

// Repository exposes the aggregate queries we rely on.
type Repository interface {
	DistinctValues(ctx context.Context, column string) ([]string, error)
	Breakdown(ctx context.Context, arg analyticsdb.FilterParams) ([]analyticsdb.BreakdownRow, error)
	Totals(ctx context.Context, arg analyticsdb.FilterParams) (analyticsdb.TotalsRow, error)
}

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	repo   Repository
	cache  *Cache
	trends TrendSource
	now    func() time.Time
}

// NewService wires a Repository with a Cache helper. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, trends: FlatTrends{}, now: time.Now}
}

// WithTrends replaces the trend source used by Metrics.
func (s *Service) WithTrends(src TrendSource) *Service {
	if src != nil {
		s.trends = src
	}
	return s
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) *Service {
	if fn != nil {
		s.now = fn
	}
	return s
}

func filterParams(p Predicates) analyticsdb.FilterParams {
	return analyticsdb.FilterParams{Where: p.Where(), Args: p.Args}
}

var _ Repository = (*analyticsdb.Queries)(nil)
