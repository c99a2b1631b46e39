package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/prospector/internal/infra/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy     bool
}

func NewRouter(cfg RouterConfig, prospects *ProspectHandler, outreachH *OutreachHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/prospects", func(r chi.Router) {
		r.Get("/", prospects.List)
		r.Get("/export", prospects.ExportCSV)

		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}
			r.Post("/", prospects.Create)
			r.Post("/export/email", prospects.EmailExport)
			r.Patch("/{id}/status", prospects.UpdateStatus)
			r.Delete("/{id}", prospects.Delete)
		})
	})

	r.Get("/search-url", outreachH.SearchURL)
	r.Get("/email-guesses", outreachH.EmailGuesses)
	r.Get("/cold-email", outreachH.ColdEmail)

	return r
}
