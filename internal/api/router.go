package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Vicinity/internal/report"
	"github.com/MikeSquared-Agency/Vicinity/internal/session"
)

// Options configures the API router.
type Options struct {
	AdminToken string
	// RateLimit is requests per minute per client address; 0 disables it.
	RateLimit int
	Counter   AmenityCounter
	Writer    AmenityWriter
}

func NewRouter(svc *report.Service, sessions *session.Manager, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(opts.RateLimit))

	reports := NewReportsHandler(svc, sessions, logger)
	criteria := NewCriteriaHandler(svc.Builder().Configs())
	admin := NewAdminHandler(sessions, opts.Counter, opts.Writer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/criteria", criteria.List)

		r.Group(func(r chi.Router) {
			r.Use(SessionIDMiddleware)
			r.Post("/reports", reports.Create)
			r.Get("/reports", reports.Get)
			r.Delete("/reports", reports.Clear)
			r.Delete("/session", reports.EndSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Get("/admin/stats", admin.Stats)
			r.Post("/admin/amenities", admin.UpsertAmenities)
		})
	})

	return r
}

func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
