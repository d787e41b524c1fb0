package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

// NewRouter wires the board API. ping backs the health endpoint.
func NewRouter(columns *ColumnHandler, tasks *TaskHandler, ping func(context.Context) error, allowedOrigins []string) http.Handler {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			respond.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/columns", func(r chi.Router) {
		r.Get("/", columns.List)
		r.Post("/", columns.Create)
		r.Put("/reorder", columns.Reorder)
		r.Get("/{id}", columns.Get)
		r.Put("/{id}", columns.Update)
		r.Delete("/{id}", columns.Delete)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Put("/reorder", tasks.Reorder)
		r.Get("/{id}", tasks.Get)
		r.Put("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
	})

	return r
}
