package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/api"
)

// Handler serves the project management API against a Store.
type Handler struct {
	store *Store
}

// NewHandler creates a handler over the store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session payload.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.store.Login(creds.Email, creds.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.SessionResponse{
		Message:     "login successful",
		User:        user,
		AccessToken: token,
	})
}

// Register creates an account and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Name == "" || creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, token, err := h.store.Register(creds.Name, creds.Email, creds.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrEmailTaken) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, api.SessionResponse{
		Message:     "registration successful",
		User:        user,
		AccessToken: token,
	})
}

// Me returns the profile behind the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(api.User)
	writeJSON(w, http.StatusOK, api.ProfileResponse{User: user})
}

// ListProjects serves one page of projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)
	items, meta := h.store.Projects(q)
	writeJSON(w, http.StatusOK, api.ListResponse[api.Project]{
		Data: items,
		Meta: api.Meta{Pagination: meta},
	})
}

// ListUserTasks serves one page of the caller's assigned tasks.
func (h *Handler) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(api.User)
	q := listQueryFromRequest(r)
	items, meta := h.store.TasksForUser(user.ID, q)
	writeJSON(w, http.StatusOK, api.ListResponse[api.Task]{
		Data: items,
		Meta: api.Meta{Pagination: meta},
	})
}

// CreateTask creates a task under a project.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey).(api.User)
	projectID := chi.URLParam(r, "projectID")

	var payload api.CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "task name is required")
		return
	}
	if payload.AssigneeID == "" {
		payload.AssigneeID = user.ID
	}

	task, err := h.store.CreateTask(projectID, user, payload)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]api.Task{"task": task})
}

// DeleteTask deletes a task by id.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if err := h.store.DeleteTask(taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func listQueryFromRequest(r *http.Request) ListQuery {
	q := r.URL.Query()
	return ListQuery{
		Name:     q.Get("name"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Page:     atoiDefault(q.Get("page"), 1),
		PerPage:  atoiDefault(q.Get("perPage"), 10),
	}
}

func atoiDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
