package devserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(store *Store, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := NewHandler(store)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(store))

			r.Get("/auth/me", h.Me)
			r.Get("/projects", h.ListProjects)
			r.Get("/projects/tasks/user", h.ListUserTasks)
			r.Post("/projects/{projectID}/tasks", h.CreateTask)
			r.Delete("/projects/tasks/{taskID}", h.DeleteTask)
		})
	})

	return r
}
