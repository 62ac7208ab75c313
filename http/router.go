package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	// RateLimiter guards /api/qualify; nil disables it.
	RateLimiter *RateLimiter
	Logger      *slog.Logger

	// TrustProxyHeaders mounts RealIP so the client address comes from
	// X-Real-IP / X-Forwarded-For. Otherwise RemoteAddr is used as is.
	TrustProxyHeaders bool
}

func NewRouter(h *QualificationHandler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(CORSMiddleware(cfg.AllowedOrigins))

		api.Get("/metadata", h.Metadata)
		api.Get("/decisions/recent", h.RecentDecisions)

		api.Group(func(limited chi.Router) {
			if cfg.RateLimiter != nil {
				limited.Use(RateLimitMiddleware(cfg.RateLimiter))
			}
			limited.Post("/qualify", h.Qualify)
		})
	})

	return r
}
