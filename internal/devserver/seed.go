package devserver

import (
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/api"
)

// Seed populates the store with a demo account and enough projects and
// tasks to exercise pagination and filtering. Returns the demo user.
//
// Credentials: demo@taskdeck.dev / demo-password.
func Seed(s *Store) (api.User, error) {
	user, _, err := s.Register("Demo User", "demo@taskdeck.dev", "demo-password")
	if err != nil {
		return api.User{}, err
	}

	owner := api.Member{ID: user.ID, Name: user.Name, Email: user.Email}
	now := s.now()

	statuses := []api.ProjectStatus{api.ProjectActive, api.ProjectCompleted, api.ProjectArchived}
	for i := 0; i < 24; i++ {
		start := now.AddDate(0, 0, -30-i)
		end := now.AddDate(0, 0, i%7-3) // a mix of overdue and upcoming
		p := s.AddProject(api.Project{
			Name:        fmt.Sprintf("Project %02d", i+1),
			Description: fmt.Sprintf("Seeded project number %d", i+1),
			StartDate:   start.UTC().Format(time.RFC3339),
			EndDate:     end.UTC().Format(time.RFC3339),
			Status:      statuses[i%len(statuses)],
			CreatedByID: user.ID,
			CreatedBy:   owner,
			Teams:       []api.Member{owner},
			CreatedAt:   start.UTC().Format(time.RFC3339),
		})

		taskStatuses := []api.TaskStatus{api.TaskTodo, api.TaskInProgress, api.TaskDone}
		priorities := []api.TaskPriority{api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical}
		for j := 0; j < 3; j++ {
			_, err := s.CreateTask(p.ID, user, api.CreateTaskPayload{
				Name:        fmt.Sprintf("Task %02d-%d", i+1, j+1),
				Description: fmt.Sprintf("Seeded task %d for project %d", j+1, i+1),
				StartDate:   start.UTC().Format(time.RFC3339),
				EndDate:     end.UTC().Format(time.RFC3339),
				Status:      taskStatuses[j%len(taskStatuses)],
				Priority:    priorities[(i+j)%len(priorities)],
				AssigneeID:  user.ID,
			})
			if err != nil {
				return api.User{}, err
			}
		}
	}

	return user, nil
}
