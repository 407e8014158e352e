package router

import (
	"islamic-app-api/internal/handler"
	"islamic-app-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler      *handler.Handler
	SurahHandler *handler.SurahHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		})
	}

	if cfg.SurahHandler != nil {
		r.Route("/api/surahs", func(r chi.Router) {
			r.Post("/create", cfg.SurahHandler.Create)
			r.Get("/get-all", cfg.SurahHandler.GetAll)
			r.Get("/getbyId/{id}", cfg.SurahHandler.GetByID)
			r.Get("/number/{number}", cfg.SurahHandler.GetByNumber)
			r.Get("/search", cfg.SurahHandler.Search)
			r.Put("/{id}", cfg.SurahHandler.Update)
			r.Delete("/{id}", cfg.SurahHandler.Delete)
		})
	}

	return r
}
