package analytichttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servify/servify-dashboard/internal/analytics"
	"github.com/servify/servify-dashboard/internal/shared"
)

type stubService struct {
	options    analytics.FilterOptions
	breakdown  []analytics.CategoryBreakdown
	metrics    analytics.Metrics
	err        error
	lastFilter analytics.FilterSet
}

func (s *stubService) GetFilterOptions(ctx context.Context) (analytics.FilterOptions, error) {
	return s.options, s.err
}

func (s *stubService) GetBreakdown(ctx context.Context, filter analytics.FilterSet) ([]analytics.CategoryBreakdown, error) {
	s.lastFilter = filter
	return s.breakdown, s.err
}

func (s *stubService) GetMetrics(ctx context.Context, filter analytics.FilterSet) (analytics.Metrics, error) {
	s.lastFilter = filter
	return s.metrics, s.err
}

func newRouter(svc AnalyticsService) http.Handler {
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: 1, Email: "a@b.co"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestFilterOptionsResponse(t *testing.T) {
	svc := &stubService{options: analytics.FilterOptions{
		Brands:               []string{"Acme"},
		ProductSubcategories: []string{},
		Stores:               []string{"North", "South"},
	}}
	rr := serve(t, newRouter(svc), "/filter-options")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"brands":["Acme"],"productSubcategories":[],"stores":["North","South"]}`, rr.Body.String())
}

func TestSalesDataParsesFilters(t *testing.T) {
	name := "Laptops"
	svc := &stubService{breakdown: []analytics.CategoryBreakdown{
		{ProductSubcategory: &name, Sales: 12, Revenue: 340.5, OrderCount: 3},
		{Sales: 1, Revenue: 2, OrderCount: 1},
	}}
	rr := serve(t, newRouter(svc), "/sales-data?brand=Acme&productSubcategory=all&store=North&timePeriod=weekly")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"productSubcategory":"Laptops","sales":12,"revenue":340.5,"orderCount":3},
		{"productSubcategory":null,"sales":1,"revenue":2,"orderCount":1}
	]`, rr.Body.String())
	assert.Equal(t, analytics.NewFilterSet("Acme", "all", "North", "weekly"), svc.lastFilter)
}

func TestSalesDataEmptyIsArray(t *testing.T) {
	rr := serve(t, newRouter(&stubService{}), "/sales-data")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestMetricsResponseShape(t *testing.T) {
	svc := &stubService{}
	rr := serve(t, newRouter(svc), "/metrics")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"totalSales":0,"totalRevenue":0,"totalOrders":0,"averageOrderValue":0,
		"trends":{"salesTrend":0,"revenueTrend":0,"aovTrend":0,"ordersTrend":0}
	}`, rr.Body.String())
	assert.Equal(t, analytics.PeriodIndefinite, svc.lastFilter.TimePeriod)
}

func TestDependencyFailureIsGeneric500(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("%w: totals: %w", shared.ErrDependency, errors.New("dial tcp 10.0.0.5:5432"))}
	for _, path := range []string{"/filter-options", "/sales-data", "/metrics"} {
		rr := serve(t, newRouter(svc), path)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String(), path)
	}
}

func TestRateLimitKeyPrefersIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	key, err := rateLimitKey(req)
	require.NoError(t, err)
	assert.Contains(t, key, "ip:")

	req = req.WithContext(shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: 42}))
	key, err = rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "user:42", key)
}
