package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	analytichttp "github.com/servify/servify-dashboard/internal/analytics/http"
	"github.com/servify/servify-dashboard/internal/auth"
	"github.com/servify/servify-dashboard/internal/observability"
	"github.com/servify/servify-dashboard/internal/platform/httpx"
	"github.com/servify/servify-dashboard/internal/view"
	"github.com/servify/servify-dashboard/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	Gate             *auth.Gate
	AuthHandler      *auth.Handler
	AnalyticsHandler *analytichttp.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with servify defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	notFound := func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", renderPage(params.Templates, logger, "pages/login.html", "Servify | Sign in"))
	r.With(params.Gate.RequirePage).Get("/dashboard", renderPage(params.Templates, logger, "pages/dashboard.html", "Servify | Dashboard"))

	r.Route("/api", func(api chi.Router) {
		api.NotFound(notFound)
		api.MethodNotAllowed(notFound)
		params.AuthHandler.MountRoutes(api)
		api.Group(func(gated chi.Router) {
			gated.Use(params.Gate.Require)
			params.AnalyticsHandler.MountRoutes(gated)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func renderPage(templates *view.Engine, logger *slog.Logger, name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := view.TemplateData{Title: title, CurrentPath: r.URL.Path}
		if err := templates.Render(w, name, data); err != nil {
			logger.Error("render page", slog.String("template", name), slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
