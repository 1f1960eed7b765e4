package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticToken string

func (s staticToken) Read() string { return string(s) }

func TestBearerHeaderInjection(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ProfileResponse{User: User{ID: "u1"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-xyz"))
	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if gotAuth != "Bearer tok-xyz" {
		t.Errorf("Authorization = %q, want Bearer tok-xyz", gotAuth)
	}
}

func TestNoBearerHeaderWithoutCredential(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(SessionResponse{AccessToken: "t"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	if _, err := c.Login(context.Background(), "a@b.co", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no header", gotAuth)
	}
}

func TestProjectFilterQueryShape(t *testing.T) {
	tests := []struct {
		name    string
		filters ProjectFilters
		absent  []string
		present map[string]string
	}{
		{
			name:    "all status omitted entirely",
			filters: ProjectFilters{Status: "all", Page: 2, PerPage: 10},
			absent:  []string{"status", "name"},
			present: map[string]string{"page": "2", "perPage": "10"},
		},
		{
			name:    "concrete status included",
			filters: ProjectFilters{Status: "active"},
			absent:  []string{"name"},
			present: map[string]string{"status": "active", "page": "1", "perPage": "10"},
		},
		{
			name:    "empty name omitted",
			filters: ProjectFilters{Name: "", Status: "archived"},
			absent:  []string{"name"},
			present: map[string]string{"status": "archived"},
		},
		{
			name:    "search term included",
			filters: ProjectFilters{Name: "deck", Status: "all"},
			absent:  []string{"status"},
			present: map[string]string{"name": "deck"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.filters.query()
			for _, key := range tt.absent {
				if q.Has(key) {
					t.Errorf("query contains %q = %q, want absent", key, q.Get(key))
				}
			}
			for key, want := range tt.present {
				if got := q.Get(key); got != want {
					t.Errorf("query %q = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestTaskFilterQueryOmitsAllPriority(t *testing.T) {
	q := TaskFilters{Status: "todo", Priority: "all"}.query()
	if q.Has("priority") {
		t.Errorf(`priority "all" leaked into query as %q`, q.Get("priority"))
	}
	if got := q.Get("status"); got != "todo" {
		t.Errorf("status = %q, want todo", got)
	}
}

func TestServiceErrorMessageDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Email already registered"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Register(context.Background(), "Ada", "a@b.co", "password123")
	if err == nil {
		t.Fatal("expected error")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error type = %T, want *ServiceError", err)
	}
	if svcErr.Message != "Email already registered" {
		t.Errorf("Message = %q, want the service's text", svcErr.Message)
	}
	if svcErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", svcErr.Status)
	}
}

func TestUnusableErrorBodyFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.CurrentUser(context.Background())

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error type = %T, want *ServiceError", err)
	}
	if svcErr.Message != genericFailure {
		t.Errorf("Message = %q, want generic fallback", svcErr.Message)
	}
}

func TestUnauthorizedUnwraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.CurrentUser(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("errors.Is(err, ErrUnauthorized) = false for %v", err)
	}
}

func TestAuthenticateFallsBackToLogin(t *testing.T) {
	var loginCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			// Registration succeeds but returns no access token.
			json.NewEncoder(w).Encode(SessionResponse{Message: "Account created"})
		case "/api/auth/login":
			loginCalled = true
			json.NewEncoder(w).Encode(SessionResponse{
				AccessToken: "tok-after-login",
				User:        User{ID: "u1", Email: "a@b.co"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.Authenticate(context.Background(), "Ada", "a@b.co", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !loginCalled {
		t.Error("login fallback was not performed")
	}
	if resp.AccessToken != "tok-after-login" {
		t.Errorf("AccessToken = %q, want the login token", resp.AccessToken)
	}
	if resp.Message != "Account created" {
		t.Errorf("Message = %q, want the registration message preserved", resp.Message)
	}
}

func TestAuthenticateReportsSignInFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			json.NewEncoder(w).Encode(SessionResponse{Message: "Account created"})
		case "/api/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Authenticate(context.Background(), "Ada", "a@b.co", "password123")
	if !errors.Is(err, ErrSignInAfterRegister) {
		t.Errorf("err = %v, want ErrSignInAfterRegister", err)
	}
}

func TestRegisterWithTokenSkipsLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			t.Error("login should not be called when register returns a token")
		}
		json.NewEncoder(w).Encode(SessionResponse{AccessToken: "tok-direct"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.Authenticate(context.Background(), "Ada", "a@b.co", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.AccessToken != "tok-direct" {
		t.Errorf("AccessToken = %q, want tok-direct", resp.AccessToken)
	}
}
