package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"campus-assistant/internal/api/handler"
	"campus-assistant/internal/api/middleware"
)

// RouterDeps holds everything the router wires together
type RouterDeps struct {
	Health    *handler.HealthHandler
	Catalog   *handler.CatalogHandler
	Chat      *handler.ChatHandler
	Auth      *middleware.AuthMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

// NewRouter builds the HTTP router
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", deps.Health.Health)
		r.Get("/ready", deps.Health.Ready)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)
			if deps.RateLimit != nil {
				r.Use(deps.RateLimit.Limit)
			}

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/departments", deps.Catalog.ListDepartments)
				r.Route("/departments/{department}/subjects", func(r chi.Router) {
					r.Get("/", deps.Catalog.ListSubjects)
					r.Post("/", deps.Catalog.CreateSubject)
				})
			})

			r.Route("/assistants/{variant}", func(r chi.Router) {
				r.Post("/ask", deps.Chat.Ask)
				r.Get("/messages", deps.Chat.Messages)
				r.Post("/reset", deps.Chat.Reset)
			})

			r.Get("/history", deps.Chat.History)
			r.Post("/cache/flush", deps.Catalog.FlushCache)
		})
	})

	return r
}
