package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spraicheux/offerflow/internal/api"
	apiMiddleware "github.com/spraicheux/offerflow/internal/api/middleware"
	"github.com/spraicheux/offerflow/internal/api/shared"
	"github.com/spraicheux/offerflow/internal/platform/metrics"
)

// serviceVersion is reported on the health endpoint.
const serviceVersion = "1.0.0"

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.clientStore,
		app.jwtService,
		app.apiKeyVerifier,
		app.config.Auth.TokenLifetimeMinutes,
	)
	ingestHandler := api.NewIngestHandler(app.ingestService, app.resultCache)
	resultHandler := api.NewResultHandler(app.resultCache, app.ingestService)
	debugHandler := api.NewDebugHandler(app.resultCache)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/token", authHandler.Token)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Result polling only needs the job ID, which acts as a capability
		r.Get("/results/{job_id}", resultHandler.GetResult)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/ingest", ingestHandler.Ingest)
		})
	})

	// Debug endpoints sit behind authentication
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/debug/job/{job_id}", debugHandler.GetJob)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "offerflow",
			"version": serviceVersion,
		})
	})

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	return r
}
