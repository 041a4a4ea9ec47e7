package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/delivery/http/handler"
	"github.com/user/catalog-service/internal/delivery/http/middleware"
	"github.com/user/catalog-service/pkg/metrics"
)

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Route("/navigation", func(r chi.Router) {
			r.Get("/", h.HandleListNavigation)
			r.Post("/refresh", h.HandleRefreshAll)
			r.Get("/{slug}", h.HandleGetNavigation)
			r.Post("/{slug}/refresh", h.HandleRefreshNavigation)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/{slug}", h.HandleGetCategory)
			r.Post("/{slug}/refresh", h.HandleRefreshCategory)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.HandleListProducts)
			r.Get("/{id}", h.HandleGetProduct)
			r.Post("/{id}/refresh", h.HandleRefreshProduct)
		})
		r.Get("/scrape-jobs", h.HandleListScrapeJobs)
		r.Route("/history", func(r chi.Router) {
			r.Post("/", h.HandleCreateHistory)
			r.Get("/{sessionID}", h.HandleListHistory)
		})
	})

	return r
}
