package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/id"
	"github.com/streakboard/streakboard-server/internal/normalize"
	"github.com/streakboard/streakboard-server/internal/store"
)

// MaxTaskListLimit caps a single task listing.
const MaxTaskListLimit = 500

// TaskService manages to-do items.
type TaskService struct {
	tasks  store.TaskStore
	users  store.UserStore
	logger *slog.Logger
	now    Clock
}

// NewTaskService creates a task service.
func NewTaskService(tasks store.TaskStore, users store.UserStore, logger *slog.Logger, now Clock) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		logger: loggerOrDiscard(logger),
		now:    clockOrNow(now),
	}
}

// ChecklistItemInput is a checklist entry as submitted by a client.
type ChecklistItemInput struct {
	Text string `json:"text" validate:"required,max=200"`
	Done bool   `json:"done"`
}

// CreateTaskRequest contains the fields of a new task.
type CreateTaskRequest struct {
	Title     string               `json:"title" validate:"required,max=200"`
	Status    domain.TaskStatus    `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
	DueDate   *time.Time           `json:"due_date,omitempty"`
	Priority  int                  `json:"priority,omitempty" validate:"omitempty,gte=1,lte=3"`
	Notes     string               `json:"notes,omitempty" validate:"max=5000"`
	Labels    []string             `json:"labels,omitempty" validate:"max=20,dive,label"`
	Checklist []ChecklistItemInput `json:"checklist,omitempty" validate:"max=100,dive"`
}

// UpdateTaskRequest is a partial task update. Nil fields are left alone.
// ClearDueDate removes the due date and wins over DueDate.
type UpdateTaskRequest struct {
	Title        *string               `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Status       *domain.TaskStatus    `json:"status,omitempty" validate:"omitnil,oneof=pending completed"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	ClearDueDate bool                  `json:"-"`
	Priority     *int                  `json:"priority,omitempty" validate:"omitnil,gte=1,lte=3"`
	Notes        *string               `json:"notes,omitempty" validate:"omitnil,max=5000"`
	Labels       *[]string             `json:"labels,omitempty" validate:"omitnil,max=20,dive,label"`
	Checklist    *[]ChecklistItemInput `json:"checklist,omitempty" validate:"omitnil,max=100,dive"`
}

// ChecklistItemPatch updates one checklist entry.
type ChecklistItemPatch struct {
	Text *string `json:"text,omitempty" validate:"omitnil,min=1,max=200"`
	Done *bool   `json:"done,omitempty"`
}

// ListTasksRequest narrows a task listing. Labels match if any label matches.
type ListTasksRequest struct {
	Status   string   `json:"status" validate:"omitempty,oneof=pending completed"`
	Priority int      `json:"priority" validate:"gte=0,lte=3"`
	Labels   []string `json:"labels" validate:"max=20"`
	Sort     string   `json:"sort" validate:"omitempty,oneof=created_at updated_at due_date priority title"`
	Order    string   `json:"order" validate:"omitempty,oneof=asc desc"`
	Limit    int      `json:"limit" validate:"gte=0,lte=500"`
}

// Create adds a task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*domain.Task, error) {
	req.Title = normalize.Title(req.Title)
	req.Notes = normalize.Text(req.Notes)
	req.Labels = domain.NormalizeLabels(req.Labels)
	normalizeChecklist(req.Checklist)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	taskID, err := id.Generate(id.PrefixTask)
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	now := s.now()
	task := &domain.Task{
		Record:    domain.Record{ID: taskID},
		OwnerID:   ownerID,
		Title:     req.Title,
		Status:    domain.TaskStatusPending,
		DueDate:   req.DueDate,
		Priority:  req.Priority,
		Notes:     req.Notes,
		Labels:    req.Labels,
		Checklist: checklistItems(req.Checklist),
	}
	if task.Priority == 0 {
		task.Priority = domain.DefaultPriority
	}
	if req.Status != "" {
		task.SetStatus(req.Status, now)
	}
	task.InitTimestamps(now)

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, translate(err, "create task")
	}

	s.logger.Debug("task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// Get returns any task by ID.
func (s *TaskService) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, translate(err, "get task")
	}
	return task, nil
}

// Update applies a partial update. Only the owner may modify a task.
func (s *TaskService) Update(ctx context.Context, actorID, taskID string, req UpdateTaskRequest) (*domain.Task, error) {
	if req.Title != nil {
		title := normalize.Title(*req.Title)
		req.Title = &title
	}
	if req.Notes != nil {
		notes := normalize.Text(*req.Notes)
		req.Notes = &notes
	}
	if req.Labels != nil {
		labels := domain.NormalizeLabels(*req.Labels)
		req.Labels = &labels
	}
	if req.Checklist != nil {
		normalizeChecklist(*req.Checklist)
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.owned(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Status != nil {
		task.SetStatus(*req.Status, now)
	}
	switch {
	case req.ClearDueDate:
		task.DueDate = nil
	case req.DueDate != nil:
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}
	if req.Labels != nil {
		task.Labels = *req.Labels
	}
	if req.Checklist != nil {
		task.Checklist = checklistItems(*req.Checklist)
	}
	task.Touch(now)

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, translate(err, "update task")
	}
	return task, nil
}

// Delete removes a task. Only the owner may delete it.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) error {
	if _, err := s.owned(ctx, actorID, taskID); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		return translate(err, "delete task")
	}
	return nil
}

// UpdateChecklistItem changes one checklist entry by position.
func (s *TaskService) UpdateChecklistItem(ctx context.Context, actorID, taskID string, index int, patch ChecklistItemPatch) (*domain.Task, error) {
	if patch.Text != nil {
		text := normalize.Title(*patch.Text)
		patch.Text = &text
	}
	if err := validate.Validate(patch); err != nil {
		return nil, err
	}

	task, err := s.owned(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(task.Checklist) {
		return nil, domainerrors.Validationf("checklist index %d out of range", index)
	}

	item := &task.Checklist[index]
	if patch.Text != nil {
		item.Text = *patch.Text
	}
	if patch.Done != nil {
		item.Done = *patch.Done
	}
	task.Touch(s.now())

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, translate(err, "update task")
	}
	return task, nil
}

// ListByOwner lists ownerID's tasks. The default order is newest first.
func (s *TaskService) ListByOwner(ctx context.Context, ownerID string, req ListTasksRequest) ([]*domain.Task, error) {
	req.Labels = domain.NormalizeLabels(req.Labels)
	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	req.Order = strings.ToLower(strings.TrimSpace(req.Order))
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, translate(err, "get owner")
	}

	filter := domain.TaskFilter{
		Status:     domain.TaskStatus(req.Status),
		Priority:   req.Priority,
		Labels:     req.Labels,
		Sort:       domain.TaskSort(req.Sort),
		Descending: req.Order != "asc",
		Limit:      req.Limit,
	}
	if filter.Sort == "" {
		filter.Sort = domain.TaskSortCreatedAt
	}

	tasks, err := s.tasks.ListTasksByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, translate(err, "list tasks")
	}
	return tasks, nil
}

// Stats counts ownerID's tasks by status. Every known status is present.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*domain.TaskStats, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, translate(err, "get owner")
	}

	counts, err := s.tasks.CountTasksByStatus(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "count tasks")
	}

	stats := &domain.TaskStats{ByStatus: make(map[domain.TaskStatus]int, len(domain.TaskStatuses))}
	for _, status := range domain.TaskStatuses {
		stats.ByStatus[status] = counts[status]
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// owned loads taskID and checks that actorID owns it.
func (s *TaskService) owned(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, domainerrors.Forbidden("you can only modify your own tasks")
	}
	return task, nil
}

func normalizeChecklist(items []ChecklistItemInput) {
	for i := range items {
		items[i].Text = normalize.Title(items[i].Text)
	}
}

func checklistItems(in []ChecklistItemInput) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, len(in))
	for i, item := range in {
		out[i] = domain.ChecklistItem{Text: item.Text, Done: item.Done}
	}
	return out
}
