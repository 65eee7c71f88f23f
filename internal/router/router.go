package router

import (
	"balloon-stock-api/internal/handler"
	"balloon-stock-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	BalloonHandler   *handler.BalloonHandler
	EventHandler     *handler.EventHandler
	InventoryHandler *handler.InventoryHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/api/status", cfg.Handler.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.Handler.Health)
		r.Get("/ready", cfg.Handler.Ready)

		r.Route("/balloons", func(r chi.Router) {
			r.Get("/", cfg.BalloonHandler.List)
			r.Post("/", cfg.BalloonHandler.Create)
			r.Post("/ensure", cfg.BalloonHandler.Ensure)
			r.Get("/{id}", cfg.BalloonHandler.Get)
			r.Put("/{id}", cfg.BalloonHandler.Update)
			r.Delete("/{id}", cfg.BalloonHandler.Delete)
			r.Get("/{id}/can-sell", cfg.BalloonHandler.CanSell)
		})

		r.Get("/manufacturers", cfg.BalloonHandler.Manufacturers)

		r.Route("/stock-in", func(r chi.Router) {
			r.Get("/", cfg.EventHandler.ListStockIns)
			r.Post("/", cfg.EventHandler.CreateStockIn)
			r.Put("/{id}", cfg.EventHandler.UpdateStockIn)
			r.Delete("/{id}", cfg.EventHandler.DeleteStockIn)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", cfg.EventHandler.ListSales)
			r.Post("/", cfg.EventHandler.CreateSale)
			r.Put("/{id}", cfg.EventHandler.UpdateSale)
			r.Delete("/{id}", cfg.EventHandler.DeleteSale)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", cfg.InventoryHandler.Get)
			r.Get("/stream", cfg.InventoryHandler.Stream)
		})
	})

	return r
}
