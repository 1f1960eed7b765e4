package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/api"
)

type tokenHolder struct{ token string }

func (t *tokenHolder) Read() string { return t.token }

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(store, logger))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestRegisterLoginAndProfile(t *testing.T) {
	srv, _ := newTestServer(t)
	holder := &tokenHolder{}
	client := api.NewClient(srv.URL, holder)
	ctx := context.Background()

	resp, err := client.Authenticate(ctx, "Ada Lovelace", "ada@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("registration returned no access token")
	}
	holder.token = resp.AccessToken

	user, err := client.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email = %q, want ada@example.com", user.Email)
	}

	// A fresh login rotates the token; the old one keeps working until
	// then, the new one resolves the same account.
	login, err := client.Login(ctx, "ada@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.AccessToken == resp.AccessToken {
		t.Error("login should rotate the token")
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	client := api.NewClient(srv.URL, nil)
	ctx := context.Background()

	if _, err := client.Register(ctx, "Ada", "ada@example.com", "password123"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := client.Register(ctx, "Ada Again", "ada@example.com", "password123")
	var svcErr *api.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error type = %T, want *ServiceError", err)
	}
	if svcErr.Status != 409 {
		t.Errorf("Status = %d, want 409", svcErr.Status)
	}
}

func TestWrongPasswordRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	client := api.NewClient(srv.URL, nil)
	ctx := context.Background()

	if _, err := client.Register(ctx, "Ada", "ada@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := client.Login(ctx, "ada@example.com", "wrong-password"); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("err = %v, want unauthorized", err)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)
	client := api.NewClient(srv.URL, &tokenHolder{})
	ctx := context.Background()

	if _, err := client.CurrentUser(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("CurrentUser err = %v, want unauthorized", err)
	}
	if _, err := client.ListProjects(ctx, api.ProjectFilters{}); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("ListProjects err = %v, want unauthorized", err)
	}
}

func seedProjects(store *Store, n int, status string) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		store.AddProject(api.Project{
			Name:      fmt.Sprintf("Project %02d", i),
			Status:    status,
			StartDate: base.Format(time.RFC3339),
			EndDate:   base.AddDate(0, 1, 0).Format(time.RFC3339),
			CreatedAt: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
}

func TestProjectListPagination(t *testing.T) {
	srv, store := newTestServer(t)
	seedProjects(store, 25, api.ProjectActive)

	holder := &tokenHolder{}
	client := api.NewClient(srv.URL, holder)
	ctx := context.Background()
	resp, err := client.Authenticate(ctx, "Ada", "ada@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	holder.token = resp.AccessToken

	page1, err := client.ListProjects(ctx, api.ProjectFilters{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(page1.Data) != 10 {
		t.Errorf("page 1 size = %d, want 10", len(page1.Data))
	}
	meta := page1.Meta.Pagination
	if meta.TotalItems != 25 || meta.TotalPages != 3 || meta.CurrentPage != 1 {
		t.Errorf("pagination = %+v, want 25 items over 3 pages", meta)
	}

	page3, err := client.ListProjects(ctx, api.ProjectFilters{Page: 3, PerPage: 10})
	if err != nil {
		t.Fatalf("ListProjects page 3: %v", err)
	}
	if len(page3.Data) != 5 {
		t.Errorf("page 3 size = %d, want the 5 remaining", len(page3.Data))
	}
}

func TestProjectListFilters(t *testing.T) {
	srv, store := newTestServer(t)
	seedProjects(store, 4, api.ProjectActive)
	seedProjects(store, 3, api.ProjectArchived)
	store.AddProject(api.Project{Name: "Migration Runway", Status: api.ProjectActive})

	holder := &tokenHolder{}
	client := api.NewClient(srv.URL, holder)
	ctx := context.Background()
	resp, _ := client.Authenticate(ctx, "Ada", "ada@example.com", "password123")
	holder.token = resp.AccessToken

	archived, err := client.ListProjects(ctx, api.ProjectFilters{Status: api.ProjectArchived})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if got := archived.Meta.Pagination.TotalItems; got != 3 {
		t.Errorf("archived total = %d, want 3", got)
	}

	// Name matching is a case-insensitive substring.
	byName, err := client.ListProjects(ctx, api.ProjectFilters{Name: "runway", Status: "all"})
	if err != nil {
		t.Fatalf("ListProjects by name: %v", err)
	}
	if got := byName.Meta.Pagination.TotalItems; got != 1 {
		t.Errorf("name-filtered total = %d, want 1", got)
	}

	// Status "all" is omitted by the client, so every project comes back.
	all, err := client.ListProjects(ctx, api.ProjectFilters{Status: "all"})
	if err != nil {
		t.Fatalf("ListProjects all: %v", err)
	}
	if got := all.Meta.Pagination.TotalItems; got != 8 {
		t.Errorf("unfiltered total = %d, want 8", got)
	}
}

func TestTaskCreateListDelete(t *testing.T) {
	srv, store := newTestServer(t)
	project := store.AddProject(api.Project{Name: "Ops", Status: api.ProjectActive})

	holder := &tokenHolder{}
	client := api.NewClient(srv.URL, holder)
	ctx := context.Background()
	resp, _ := client.Authenticate(ctx, "Ada", "ada@example.com", "password123")
	holder.token = resp.AccessToken

	task, err := client.CreateTask(ctx, project.ID, api.CreateTaskPayload{
		Name:        "Rotate credentials",
		Description: "Quarterly rotation of service tokens",
		StartDate:   "2025-06-01T00:00:00Z",
		EndDate:     "2025-06-07T00:00:00Z",
		Status:      api.TaskTodo,
		Priority:    api.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Project.Name != "Ops" {
		t.Errorf("task project = %q, want Ops", task.Project.Name)
	}
	if task.AssigneeID != resp.User.ID {
		t.Errorf("assignee = %q, want the creator by default", task.AssigneeID)
	}

	tasks, err := client.ListTasks(ctx, api.TaskFilters{Status: "all", Priority: "all"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if got := tasks.Meta.Pagination.TotalItems; got != 1 {
		t.Fatalf("task total = %d, want 1", got)
	}

	if err := client.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	tasks, _ = client.ListTasks(ctx, api.TaskFilters{Status: "all", Priority: "all"})
	if got := tasks.Meta.Pagination.TotalItems; got != 0 {
		t.Errorf("task total after delete = %d, want 0", got)
	}

	var svcErr *api.ServiceError
	if err := client.DeleteTask(ctx, task.ID); !errors.As(err, &svcErr) || svcErr.Status != 404 {
		t.Errorf("second delete err = %v, want 404", err)
	}
}

func TestTaskStatusSpellingsMatch(t *testing.T) {
	store := NewStore()
	user, _, err := store.Register("Ada", "ada@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	project := store.AddProject(api.Project{Name: "Ops", Status: api.ProjectActive})

	_, err = store.CreateTask(project.ID, user, api.CreateTaskPayload{
		Name:       "Legacy row",
		Status:     "in-progress", // historical hyphen spelling
		AssigneeID: user.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	items, _ := store.TasksForUser(user.ID, ListQuery{Status: api.TaskInProgress})
	if len(items) != 1 {
		t.Errorf("matched %d tasks for in_progress, want the in-progress row", len(items))
	}
}

func TestOverdueComputation(t *testing.T) {
	store := NewStore()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.AddProject(api.Project{
		Name:    "Late",
		Status:  api.ProjectActive,
		EndDate: now.AddDate(0, 0, -3).Format(time.RFC3339),
	})
	store.AddProject(api.Project{
		Name:    "Finished late",
		Status:  api.ProjectCompleted,
		EndDate: now.AddDate(0, 0, -3).Format(time.RFC3339),
	})
	store.AddProject(api.Project{
		Name:    "On track",
		Status:  api.ProjectActive,
		EndDate: now.AddDate(0, 0, 3).Format(time.RFC3339),
	})

	items, _ := store.Projects(ListQuery{})
	byName := map[string]api.Project{}
	for _, p := range items {
		byName[p.Name] = p
	}

	if p := byName["Late"]; !p.IsOverdue || p.OverdueDays != 3 {
		t.Errorf("Late: overdue=%v days=%d, want true/3", p.IsOverdue, p.OverdueDays)
	}
	if p := byName["Finished late"]; p.IsOverdue {
		t.Error("completed project must never be overdue")
	}
	if p := byName["On track"]; p.IsOverdue {
		t.Error("future end date must not be overdue")
	}
}
