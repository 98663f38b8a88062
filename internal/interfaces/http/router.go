// Package http assembles the HTTP route tree and server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/prometheus"
	"github.com/rankforge/rankforge/internal/interfaces/http/handlers"
	"github.com/rankforge/rankforge/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	ResearchHandler *handlers.ResearchHandler
	HealthHandler   *handlers.HealthHandler

	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the complete route tree: probe endpoints, the metrics
// endpoint and the versioned API group behind the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, "/healthz", "/readyz", "/metrics"))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerResearchRoutes(api, cfg.ResearchHandler)
	})

	return r
}

func registerResearchRoutes(r chi.Router, h *handlers.ResearchHandler) {
	if h == nil {
		return
	}
	r.Route("/research-runs", func(rr chi.Router) {
		rr.Post("/", h.CreateRun)
		rr.Route("/{runID}", func(item chi.Router) {
			item.Get("/", h.GetRun)
			item.Get("/keywords", h.ListKeywords)
		})
	})
	r.Get("/keywords/related", h.RelatedKeywords)
}
