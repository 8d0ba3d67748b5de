/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /api/systems          Registered depreciation systems
  /api/assets/*         Book-asset management and schedules
  /api/deductions       Book-wide deductions for a tax year
  /api/schedule         Stateless projections
  /api/samples/*        Sample books

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultOrigins are the CORS origins allowed when none are configured.
var DefaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. origins are
// the allowed CORS origins; nil means DefaultOrigins.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/systems", h.ListSystems)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.CreateAsset)
			r.Get("/{name}", h.GetAsset)
			r.Delete("/{name}", h.DeleteAsset)
			r.Get("/{name}/schedule", h.GetSchedule)
		})

		r.Get("/deductions", h.GetDeductions)
		r.Post("/schedule", h.ComputeSchedule)

		r.Route("/samples", func(r chi.Router) {
			r.Get("/", h.ListSamples)
			r.Post("/load", h.LoadSampleBook)
		})
	})

	return r
}
