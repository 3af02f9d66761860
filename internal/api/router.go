package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/xresolve/internal/api/handler"
	mw "github.com/iconidentify/xresolve/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	resolveHandler *handler.ResolveHandler,
	healthHandler *handler.HealthHandler,
	uiHandler *handler.UIHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	// CORS for scripts and extensions
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Web UI (no auth)
	r.Get("/", uiHandler.Index)
	r.Get("/favicon.svg", uiHandler.Favicon)

	// Legacy resolve endpoint. Unauthenticated: existing callers predate
	// the API key and send only {"tweetUrl": ...}.
	r.Post("/api/download", resolveHandler.CompatResolve)

	// API v1 (authenticated when an API key is configured)
	r.Route("/api/v1", func(r chi.Router) {
		if apiKey != "" {
			r.Use(mw.APIKeyAuth(apiKey))
		}

		r.Post("/resolve", resolveHandler.Resolve)
		r.Get("/resolutions", resolveHandler.Recent)
		r.Get("/stats", healthHandler.Stats)
	})

	return r
}
