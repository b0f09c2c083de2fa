/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a local frontend

ROUTE GROUPS:
  /api/users/*     Member management
  /api/todos/*     Task tree
  /api/items/*     Money items (expenses and balances)
  /api/bills/*     Bill preview and settlement

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

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.ListTodos)
			r.Post("/", h.CreateTodo)
			r.Get("/{id}", h.GetTodo)
			r.Post("/{id}/parent", h.SetTodoParent)
			r.Post("/{id}/archive", h.ToggleTodoArchive)
			r.Post("/{id}/copy", h.CopyTodo)
			r.Put("/{id}/progress", h.SetTodoProgress)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/expenses", h.CreateExpense)
			r.Get("/expenses/{id}", h.GetExpense)
			r.Delete("/{id}", h.DeleteItem)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Post("/preview", h.PreviewBill)
			r.Post("/settle", h.SettleBill)
		})
	})

	return r
}
