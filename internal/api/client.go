// Package api is the HTTP client for the project management service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// genericFailure is shown when the service gives no usable message.
const genericFailure = "Unable to complete request. Please try again."

// ErrUnauthorized reports a 401 from the service.
var ErrUnauthorized = errors.New("unauthorized")

// TokenSource yields the current bearer credential, or "" when absent.
// The credential mirror satisfies this.
type TokenSource interface {
	Read() string
}

// ServiceError carries the status and user-facing message of a failed
// request. Message is safe to render verbatim.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

// Unwrap lets callers branch on ErrUnauthorized.
func (e *ServiceError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to the project management service.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL. tokens may be nil for
// unauthenticated use.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do executes a JSON request and decodes the response into out.
// The mirrored credential is attached as a bearer header when present.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Read(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Status: 0, Message: genericFailure}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{Status: resp.StatusCode, Message: genericFailure}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{Status: resp.StatusCode, Message: serviceMessage(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// serviceMessage extracts {message} from an error body, falling back
// to the generic failure text.
func serviceMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return genericFailure
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The returned session may lack an access
// token; Authenticate handles the login fallback.
func (c *Client) Register(ctx context.Context, name, email, password string) (*SessionResponse, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var resp SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ErrSignInAfterRegister reports that the account was created but the
// follow-up sign-in failed; the user should log in manually.
var ErrSignInAfterRegister = errors.New("account created, but sign-in failed - please log in")

// Authenticate registers an account and guarantees a usable session.
// When registration does not return an access token it performs an
// explicit login with the same credentials.
func (c *Client) Authenticate(ctx context.Context, name, email, password string) (*SessionResponse, error) {
	resp, err := c.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		return resp, nil
	}

	loginResp, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSignInAfterRegister, err)
	}
	loginResp.Message = resp.Message
	return loginResp, nil
}

// CurrentUser fetches the profile behind the active credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ProjectFilters narrows the project list. Zero values and "all" are
// omitted from the outgoing query.
type ProjectFilters struct {
	Name    string
	Status  string
	Page    int
	PerPage int
}

func (f ProjectFilters) query() url.Values {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Status != "" && f.Status != "all" {
		q.Set("status", f.Status)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 10
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	return q
}

// ListProjects fetches one page of projects.
func (c *Client) ListProjects(ctx context.Context, f ProjectFilters) (*ListResponse[Project], error) {
	var resp ListResponse[Project]
	if err := c.do(ctx, http.MethodGet, "/api/projects", f.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskFilters narrows the current user's task list.
type TaskFilters struct {
	Name     string
	Status   string
	Priority string
	Page     int
	PerPage  int
}

func (f TaskFilters) query() url.Values {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Status != "" && f.Status != "all" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" && f.Priority != "all" {
		q.Set("priority", f.Priority)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 10
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	return q
}

// ListTasks fetches one page of tasks assigned to the current user.
func (c *Client) ListTasks(ctx context.Context, f TaskFilters) (*ListResponse[Task], error) {
	var resp ListResponse[Task]
	if err := c.do(ctx, http.MethodGet, "/api/projects/tasks/user", f.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask creates a task under a project.
func (c *Client) CreateTask(ctx context.Context, projectID string, payload CreateTaskPayload) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	path := "/api/projects/" + url.PathEscape(projectID) + "/tasks"
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	path := "/api/projects/tasks/" + url.PathEscape(taskID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
