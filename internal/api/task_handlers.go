package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/service"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createTask",
		Method:        http.MethodPost,
		Path:          "/api/v1/tasks",
		Summary:       "Create task",
		Description:   "Creates a task owned by the signed-in user",
		Tags:          []string{"Tasks"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTask",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Get task",
		Description: "Returns a task by ID",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleGetTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTask",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Update task",
		Description: "Updates the given fields of a task. Completing a task stamps completed_at. Owner only.",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleUpdateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTask",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Delete task",
		Description: "Deletes a task. Owner only.",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleDeleteTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateChecklistItem",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tasks/{id}/checklist/{index}",
		Summary:     "Update checklist item",
		Description: "Changes the text or done flag of one checklist entry. Owner only.",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleUpdateChecklistItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserTasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/tasks",
		Summary:     "List user tasks",
		Description: "Lists a user's tasks with optional filters. Newest first by default.",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleListUserTasks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserTaskStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/tasks/stats",
		Summary:     "Task stats",
		Description: "Counts a user's tasks by status",
		Tags:        []string{"Tasks"},
		Security:    bearer,
	}, s.handleGetUserTaskStats)
}

// === DTOs ===

// ChecklistItemRequest is a checklist entry in a request body.
type ChecklistItemRequest struct {
	Text string `json:"text" doc:"Item text"`
	Done bool   `json:"done,omitempty" doc:"Whether the item is done"`
}

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title     string                 `json:"title" doc:"Task title"`
	Status    string                 `json:"status,omitempty" enum:"pending,completed" doc:"Initial status (default pending)"`
	DueDate   string                 `json:"due_date,omitempty" doc:"RFC3339 timestamp, YYYY-MM-DD, or epoch milliseconds"`
	Priority  int                    `json:"priority,omitempty" doc:"1 (default) to 3"`
	Notes     string                 `json:"notes,omitempty" doc:"Free-form notes"`
	Labels    []string               `json:"labels,omitempty" doc:"Labels, lowercased and deduplicated"`
	Checklist []ChecklistItemRequest `json:"checklist,omitempty" doc:"Sub-steps"`
}

// CreateTaskInput wraps the create request for Huma.
type CreateTaskInput struct {
	Body CreateTaskRequest
}

// UpdateTaskRequest is the request body for a partial task update.
type UpdateTaskRequest struct {
	Title     *string                 `json:"title,omitempty" doc:"New title"`
	Status    *string                 `json:"status,omitempty" enum:"pending,completed" doc:"New status"`
	DueDate   *string                 `json:"due_date,omitempty" doc:"New due date, or an empty string to clear it"`
	Priority  *int                    `json:"priority,omitempty" doc:"New priority"`
	Notes     *string                 `json:"notes,omitempty" doc:"New notes"`
	Labels    *[]string               `json:"labels,omitempty" doc:"Replacement labels"`
	Checklist *[]ChecklistItemRequest `json:"checklist,omitempty" doc:"Replacement checklist"`
}

// UpdateTaskInput wraps the update request for Huma.
type UpdateTaskInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body UpdateTaskRequest
}

// TaskIDInput identifies a task.
type TaskIDInput struct {
	ID string `path:"id" doc:"Task ID"`
}

// ChecklistItemPatchRequest is the request body for a checklist item update.
type ChecklistItemPatchRequest struct {
	Text *string `json:"text,omitempty" doc:"New item text"`
	Done *bool   `json:"done,omitempty" doc:"New done flag"`
}

// UpdateChecklistItemInput wraps the checklist item update for Huma.
type UpdateChecklistItemInput struct {
	ID    string `path:"id" doc:"Task ID"`
	Index int    `path:"index" doc:"Zero-based checklist position"`
	Body  ChecklistItemPatchRequest
}

// TaskOutput wraps a task for Huma.
type TaskOutput struct {
	Body *domain.Task
}

// ListUserTasksInput contains task listing filters.
type ListUserTasksInput struct {
	ID       string   `path:"id" doc:"Owner user ID"`
	Status   string   `query:"status" doc:"Only tasks with this status"`
	Priority int      `query:"priority" doc:"Only tasks with this priority"`
	Labels   []string `query:"labels" doc:"Comma-separated labels; a task matches if it has any of them"`
	Sort     string   `query:"sort" doc:"created_at, updated_at, due_date, priority or title"`
	Order    string   `query:"order" doc:"asc or desc (default desc)"`
	Limit    int      `query:"limit" doc:"Max tasks (0 = all, max 500)"`
}

// TaskListResponse is a page of tasks.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks" doc:"Matching tasks"`
	Count int            `json:"count" doc:"Number of tasks returned"`
}

// TaskListOutput wraps a task list for Huma.
type TaskListOutput struct {
	Body TaskListResponse
}

// UserIDInput identifies a user.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// TaskStatsOutput wraps task stats for Huma.
type TaskStatsOutput struct {
	Body *domain.TaskStats
}

// === Handlers ===

func (s *Server) handleCreateTask(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.CreateTaskRequest{
		Title:     input.Body.Title,
		Status:    domain.TaskStatus(input.Body.Status),
		Priority:  input.Body.Priority,
		Notes:     input.Body.Notes,
		Labels:    input.Body.Labels,
		Checklist: checklistInputs(input.Body.Checklist),
	}
	if input.Body.DueDate != "" {
		due, _, err := s.dueDate(&input.Body.DueDate)
		if err != nil {
			return nil, err
		}
		req.DueDate = due
	}

	task, err := s.services.Tasks.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: task}, nil
}

func (s *Server) handleGetTask(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: task}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	req := service.UpdateTaskRequest{
		Title:    body.Title,
		Priority: body.Priority,
		Notes:    body.Notes,
		Labels:   body.Labels,
	}
	if body.Status != nil {
		status := domain.TaskStatus(*body.Status)
		req.Status = &status
	}
	if body.Checklist != nil {
		items := checklistInputs(*body.Checklist)
		req.Checklist = &items
	}
	req.DueDate, req.ClearDueDate, err = s.dueDate(body.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.Update(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: task}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, input *TaskIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tasks.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Task deleted"}}, nil
}

func (s *Server) handleUpdateChecklistItem(ctx context.Context, input *UpdateChecklistItemInput) (*TaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.UpdateChecklistItem(ctx, userID, input.ID, input.Index, service.ChecklistItemPatch{
		Text: input.Body.Text,
		Done: input.Body.Done,
	})
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: task}, nil
}

func (s *Server) handleListUserTasks(ctx context.Context, input *ListUserTasksInput) (*TaskListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.services.Tasks.ListByOwner(ctx, input.ID, service.ListTasksRequest{
		Status:   input.Status,
		Priority: input.Priority,
		Labels:   splitCSV(input.Labels),
		Sort:     input.Sort,
		Order:    input.Order,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &TaskListOutput{Body: TaskListResponse{Tasks: tasks, Count: len(tasks)}}, nil
}

func (s *Server) handleGetUserTaskStats(ctx context.Context, input *UserIDInput) (*TaskStatsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	stats, err := s.services.Tasks.Stats(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TaskStatsOutput{Body: stats}, nil
}

// === Helpers ===

// dueDate parses a due_date field.
func (s *Server) dueDate(raw *string) (*time.Time, bool, error) {
	due, clearDue, err := parseDueDate(raw)
	if err != nil {
		return nil, false, domainerrors.ValidationWithDetails("invalid due date",
			map[string]string{"due_date": "must be an RFC3339 timestamp, YYYY-MM-DD, or epoch milliseconds"})
	}
	return due, clearDue, nil
}

func checklistInputs(items []ChecklistItemRequest) []service.ChecklistItemInput {
	if items == nil {
		return nil
	}
	out := make([]service.ChecklistItemInput, len(items))
	for i, item := range items {
		out[i] = service.ChecklistItemInput{Text: item.Text, Done: item.Done}
	}
	return out
}
