// Package devserver is a self-contained, in-memory implementation of
// the project management service contract. It backs local development
// and the client's integration tests; it is not a production server.
package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/api"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials reports a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken reports a duplicate registration.
var ErrEmailTaken = errors.New("an account with this email already exists")

type account struct {
	user         api.User
	passwordHash []byte
	token        string
}

// Store holds all server state behind one mutex. Good enough for a dev
// server; the client only ever issues serialized list fetches anyway.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	byToken  map[string]*account
	projects []api.Project
	tasks    []api.Task
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*account),
		byToken:  make(map[string]*account),
		now:      time.Now,
	}
}

// Register creates an account and returns the profile with a fresh
// token. Mirrors the real service, which signs the user in directly.
func (s *Store) Register(name, email, password string) (api.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.accounts[email]; exists {
		return api.User{}, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return api.User{}, "", err
	}

	acct := &account{
		user: api.User{
			ID:        uuid.New().String(),
			Name:      name,
			Email:     email,
			CreatedAt: s.now().UTC().Format(time.RFC3339),
		},
		passwordHash: hash,
		token:        newToken(),
	}
	s.accounts[email] = acct
	s.byToken[acct.token] = acct
	return acct.user, acct.token, nil
}

// Login verifies credentials and rotates the account token.
func (s *Store) Login(email, password string) (api.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return api.User{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return api.User{}, "", ErrInvalidCredentials
	}

	delete(s.byToken, acct.token)
	acct.token = newToken()
	s.byToken[acct.token] = acct
	return acct.user, acct.token, nil
}

// UserByToken resolves a bearer token to its account.
func (s *Store) UserByToken(token string) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byToken[token]
	if !ok {
		return api.User{}, false
	}
	return acct.user, true
}

func newToken() string {
	return "tok_" + uuid.New().String()
}

// ListQuery narrows and pages a list request.
type ListQuery struct {
	Name     string
	Status   string
	Priority string
	Page     int
	PerPage  int
}

func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}
	return q
}

// Projects returns one page of projects matching the query, with
// overdue fields computed against the current time.
func (s *Store) Projects(q ListQuery) ([]api.Project, api.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = q.normalize()

	matched := make([]api.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		p.IsOverdue, p.OverdueDays = overdue(p.EndDate, p.Status == api.ProjectCompleted, s.now())
		matched = append(matched, p)
	}

	start, end, meta := paginate(len(matched), q.Page, q.PerPage)
	return matched[start:end], meta
}

// TasksForUser returns one page of the user's assigned tasks.
func (s *Store) TasksForUser(userID string, q ListQuery) ([]api.Task, api.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = q.normalize()

	matched := make([]api.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.AssigneeID != userID {
			continue
		}
		if q.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.Status != "" && !statusMatches(t.Status, q.Status) {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		done := t.Status == api.TaskDone || t.Status == api.TaskCompleted
		t.IsOverdue, t.OverdueDays = overdue(t.EndDate, done, s.now())
		matched = append(matched, t)
	}

	start, end, meta := paginate(len(matched), q.Page, q.PerPage)
	return matched[start:end], meta
}

// statusMatches treats in_progress and in-progress as the same state,
// matching the real service's historical spellings.
func statusMatches(have, want string) bool {
	canon := func(s string) string { return strings.ReplaceAll(s, "-", "_") }
	return canon(have) == canon(want)
}

// AddProject registers a project, keeping the list sorted by creation
// time descending so pagination is stable.
func (s *Store) AddProject(p api.Project) api.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := s.now().UTC().Format(time.RFC3339)
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.projects = append(s.projects, p)
	sort.SliceStable(s.projects, func(i, j int) bool {
		return s.projects[i].CreatedAt > s.projects[j].CreatedAt
	})
	return p
}

// ProjectByID looks up a project.
func (s *Store) ProjectByID(id string) (api.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return api.Project{}, false
}

// CreateTask creates a task under a project on behalf of creator.
func (s *Store) CreateTask(projectID string, creator api.User, payload api.CreateTaskPayload) (api.Task, error) {
	project, ok := s.ProjectByID(projectID)
	if !ok {
		return api.Task{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(time.RFC3339)
	member := api.Member{ID: creator.ID, Name: creator.Name, Email: creator.Email}
	task := api.Task{
		ID:          uuid.New().String(),
		Name:        payload.Name,
		Description: payload.Description,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		Status:      payload.Status,
		Priority:    payload.Priority,
		ProjectID:   project.ID,
		AssigneeID:  payload.AssigneeID,
		CreatedByID: creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    member,
		CreatedBy:   member,
		Project:     api.ProjectRef{ID: project.ID, Name: project.Name},
	}
	// Newest first, matching the project ordering.
	s.tasks = append([]api.Task{task}, s.tasks...)
	return task, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// overdue computes the derived overdue fields the client consumes
// read-only. Completed records are never overdue.
func overdue(endDate string, done bool, now time.Time) (bool, int) {
	if done {
		return false, 0
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return false, 0
	}
	if !now.After(end) {
		return false, 0
	}
	days := int(now.Sub(end).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return true, days
}

// paginate converts a match count and page request into slice bounds
// plus the pagination envelope.
func paginate(total, page, perPage int) (start, end int, meta api.Pagination) {
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	meta = api.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PerPage:     perPage,
	}
	return start, end, meta
}
