package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/tubegrab/internal/api/handler"
	mw "github.com/iconidentify/tubegrab/internal/api/middleware"
	"github.com/iconidentify/tubegrab/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Video    *handler.VideoHandler
	Health   *handler.HealthHandler
	UI       *handler.UIHandler
	Activity *handler.ActivityHandler
}

// NewRouter creates the HTTP router with all routes configured.
// When apiKey is empty the /api routes are open.
func NewRouter(h Handlers, m *metrics.Metrics, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger, m))
	r.Use(mw.Recovery(logger))
	r.Use(mw.CORS)

	r.Get("/", h.UI.Index)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		if apiKey != "" {
			r.Use(mw.APIKeyAuth(apiKey))
		}

		r.Get("/video_details", h.Video.Details)
		r.Post("/download", h.Video.Download)
		r.Get("/activity", h.Activity.List)
	})

	return r
}
