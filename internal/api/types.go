package api

// User is the authenticated account profile.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Photo     string `json:"photo,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SessionResponse is returned by login and register.
// AccessToken may be empty on register; callers fall back to login.
type SessionResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ProfileResponse is returned by the current-user endpoint.
type ProfileResponse struct {
	User User `json:"user"`
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus = string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Member is a minimal person reference on projects and tasks.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Document is a file attached to a project.
type Document struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Project is a project record. IsOverdue and OverdueDays are computed
// by the server and consumed read-only.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Documents   []Document    `json:"documents"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
	CreatedByID string        `json:"createdById"`
	UserID      string        `json:"userId,omitempty"`
	Teams       []Member      `json:"teams"`
	CreatedBy   Member        `json:"createdBy"`
	IsOverdue   bool          `json:"isOverdue"`
	OverdueDays int           `json:"overdueDays"`
}

// TaskStatus is the workflow state of a task. The server has emitted
// both in_progress and in-progress historically; both are accepted.
type TaskStatus = string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskDone       TaskStatus = "done"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority is the urgency of a task.
type TaskPriority = string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// ProjectRef is a minimal project reference embedded in tasks.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is a task record assigned to a user within a project.
type Task struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	ProjectID   string       `json:"projectId"`
	AssigneeID  string       `json:"assigneeId"`
	CreatedByID string       `json:"createdById"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
	Assignee    Member       `json:"assignee"`
	CreatedBy   Member       `json:"createdBy"`
	Project     ProjectRef   `json:"project"`
	IsOverdue   bool         `json:"isOverdue"`
	OverdueDays int          `json:"overdueDays"`
}

// Pagination is the server's paging metadata.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	PerPage     int `json:"perPage"`
}

// Meta wraps pagination in the list envelope.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// ListResponse is the envelope for paginated list endpoints.
type ListResponse[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// CreateTaskPayload is the body for creating a task under a project.
type CreateTaskPayload struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  string       `json:"assigneeId"`
}
