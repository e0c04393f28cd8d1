package analytichttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/servify/servify-dashboard/internal/analytics"
	"github.com/servify/servify-dashboard/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// AnalyticsService defines the aggregation contract used by the handler.
type AnalyticsService interface {
	GetFilterOptions(ctx context.Context) (analytics.FilterOptions, error)
	GetBreakdown(ctx context.Context, filter analytics.FilterSet) ([]analytics.CategoryBreakdown, error)
	GetMetrics(ctx context.Context, filter analytics.FilterSet) (analytics.Metrics, error)
}

// Handler serves the sales analytics JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	timeout time.Duration
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, timeout: requestTimeout}
}

func (h *Handler) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	opts, err := h.service.GetFilterOptions(ctx)
	if err != nil {
		h.handleServerError(w, r, "filter options", err)
		return
	}
	httpx.JSON(w, http.StatusOK, opts)
}

func (h *Handler) handleSalesData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.service.GetBreakdown(ctx, parseFilters(r))
	if err != nil {
		h.handleServerError(w, r, "sales data", err)
		return
	}
	if items == nil {
		items = []analytics.CategoryBreakdown{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	metrics, err := h.service.GetMetrics(ctx, parseFilters(r))
	if err != nil {
		h.handleServerError(w, r, "metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func parseFilters(r *http.Request) analytics.FilterSet {
	q := r.URL.Query()
	return analytics.NewFilterSet(
		q.Get("brand"),
		q.Get("productSubcategory"),
		q.Get("store"),
		q.Get("timePeriod"),
	)
}

func (h *Handler) handleServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error("analytics "+msg, slog.Any("error", err), slog.String("path", r.URL.Path))
	httpx.RespondError(w, err)
}
