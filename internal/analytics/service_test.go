package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsdb "github.com/servify/servify-dashboard/internal/analytics/db"
	"github.com/servify/servify-dashboard/internal/shared"
)

type mockRepo struct {
	mu          sync.Mutex
	distinct    map[string][]string
	distinctErr error
	rows        []analyticsdb.BreakdownRow
	totals      analyticsdb.TotalsRow
	totalsErr   error
	calls       map[string]int
	lastParams  analyticsdb.FilterParams
}

func (m *mockRepo) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *mockRepo) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockRepo) DistinctValues(ctx context.Context, column string) ([]string, error) {
	m.record("distinct")
	if m.distinctErr != nil {
		return nil, m.distinctErr
	}
	return m.distinct[column], nil
}

func (m *mockRepo) Breakdown(ctx context.Context, arg analyticsdb.FilterParams) ([]analyticsdb.BreakdownRow, error) {
	m.record("breakdown")
	m.lastParams = arg
	return m.rows, nil
}

func (m *mockRepo) Totals(ctx context.Context, arg analyticsdb.FilterParams) (analyticsdb.TotalsRow, error) {
	m.record("totals")
	m.lastParams = arg
	return m.totals, m.totalsErr
}

var serviceNow = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, NewCache(client, time.Minute, nil)).WithNow(func() time.Time { return serviceNow })
	return svc, mr
}

func TestGetFilterOptionsSortsAndDedupes(t *testing.T) {
	repo := &mockRepo{distinct: map[string][]string{
		ColumnBrand:              {"Zeta", "Acme", "Acme", ""},
		ColumnProductSubcategory: {"Phones", "Laptops"},
		ColumnStore:              nil,
	}}
	svc := NewService(repo, nil)

	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zeta"}, opts.Brands)
	assert.Equal(t, []string{"Laptops", "Phones"}, opts.ProductSubcategories)
	assert.NotNil(t, opts.Stores)
	assert.Empty(t, opts.Stores)
	assert.Equal(t, 3, repo.count("distinct"))
}

func TestGetFilterOptionsFailureIsDependencyError(t *testing.T) {
	repo := &mockRepo{distinctErr: errors.New("connection refused")}
	svc := NewService(repo, nil)

	_, err := svc.GetFilterOptions(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDependency)
}

func TestGetFilterOptionsCaches(t *testing.T) {
	repo := &mockRepo{distinct: map[string][]string{ColumnBrand: {"Acme"}}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.GetFilterOptions(ctx)
	require.NoError(t, err)
	opts, err := svc.GetFilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, opts.Brands)
	assert.Equal(t, 3, repo.count("distinct"))
}

func TestGetBreakdownOrdersAndMapsNullCategory(t *testing.T) {
	repo := &mockRepo{rows: []analyticsdb.BreakdownRow{
		{ProductSubcategory: pgtype.Text{String: "Laptops", Valid: true}, Sales: 10, Revenue: 900, OrderCount: 4},
		{Sales: 25, Revenue: 300, OrderCount: 2},
		{ProductSubcategory: pgtype.Text{String: "Phones", Valid: true}, Sales: 10, Revenue: 500, OrderCount: 3},
	}}
	svc := NewService(repo, nil).WithNow(func() time.Time { return serviceNow })

	items, err := svc.GetBreakdown(context.Background(), NewFilterSet("Acme", "all", "", "weekly"))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Nil(t, items[0].ProductSubcategory)
	require.NotNil(t, items[1].ProductSubcategory)
	assert.Equal(t, "Laptops", *items[1].ProductSubcategory)
	assert.Equal(t, "Phones", *items[2].ProductSubcategory)

	assert.Equal(t, "WHERE brand = $1 AND date >= $2", repo.lastParams.Where)
	require.Len(t, repo.lastParams.Args, 2)
	assert.Equal(t, "Acme", repo.lastParams.Args[0])
	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), repo.lastParams.Args[1])
}

func TestGetBreakdownEmptyIsNonNil(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	items, err := svc.GetBreakdown(context.Background(), FilterSet{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetBreakdownCachesPerFilter(t *testing.T) {
	repo := &mockRepo{rows: []analyticsdb.BreakdownRow{{Sales: 1}}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.GetBreakdown(ctx, NewFilterSet("Acme", "", "", ""))
	require.NoError(t, err)
	_, err = svc.GetBreakdown(ctx, NewFilterSet("Acme", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count("breakdown"))

	_, err = svc.GetBreakdown(ctx, NewFilterSet("Zeta", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("breakdown"))
}

func TestGetMetricsCachesAndBumpRefreshes(t *testing.T) {
	repo := &mockRepo{totals: analyticsdb.TotalsRow{TotalSales: 12, TotalRevenue: 1200.5, TotalOrders: 3, AverageOrderValue: 400.1666}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	filter := NewFilterSet("", "", "", "monthly")

	metrics, err := svc.GetMetrics(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1200.5, metrics.TotalRevenue)
	assert.Equal(t, int64(3), metrics.TotalOrders)
	assert.Equal(t, Trends{}, metrics.Trends)

	_, err = svc.GetMetrics(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count("totals"))

	ver, err := svc.cache.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	repo.totals.TotalRevenue = 1500
	metrics, err = svc.GetMetrics(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, metrics.TotalRevenue)
	assert.Equal(t, 2, repo.count("totals"))
}

func TestGetMetricsEmptyDatasetIsZero(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	metrics, err := svc.GetMetrics(context.Background(), FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, metrics)
}

func TestGetMetricsDependencyError(t *testing.T) {
	svc := NewService(&mockRepo{totalsErr: errors.New("timeout")}, nil)
	_, err := svc.GetMetrics(context.Background(), FilterSet{})
	assert.ErrorIs(t, err, shared.ErrDependency)
}

type fixedTrends struct{ trends Trends }

func (f fixedTrends) Trends(context.Context, FilterSet, Metrics) (Trends, error) {
	return f.trends, nil
}

func TestGetMetricsUsesTrendSource(t *testing.T) {
	want := Trends{SalesTrend: 5.5, OrdersTrend: -2}
	svc := NewService(&mockRepo{}, nil).WithTrends(fixedTrends{trends: want})
	metrics, err := svc.GetMetrics(context.Background(), FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, want, metrics.Trends)
}

func TestRedisOutageFallsBackToRepository(t *testing.T) {
	repo := &mockRepo{totals: analyticsdb.TotalsRow{TotalOrders: 1}}
	svc, mr := newTestService(t, repo)
	mr.Close()

	metrics, err := svc.GetMetrics(context.Background(), FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), metrics.TotalOrders)
	assert.Equal(t, 1, repo.count("totals"))
}

func TestCacheKeyEscapesFilterValues(t *testing.T) {
	a := filterKeyParts("metrics", NewFilterSet("a:b", "", "", ""), serviceNow)
	b := filterKeyParts("metrics", NewFilterSet("a", "b", "", ""), serviceNow)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "a%3Ab", a[2])
	assert.Equal(t, "-", a[5])
}
