package domain

import (
	"slices"
	"time"

	"github.com/streakboard/streakboard-server/internal/normalize"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusPending is a task that still has to be done.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted is a finished task. Completed tasks count toward streaks and leaderboards.
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskStatuses lists every known status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusCompleted}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return slices.Contains(TaskStatuses, s)
}

// Priority bounds.
const (
	MinPriority     = 1
	MaxPriority     = 3
	DefaultPriority = MinPriority
)

// ChecklistItem is a sub-step of a task.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Task is a to-do item owned by a single user.
type Task struct {
	Record
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	Status      TaskStatus      `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Priority    int             `json:"priority"`
	Notes       string          `json:"notes"`
	Labels      []string        `json:"labels"`
	Checklist   []ChecklistItem `json:"checklist"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the task is completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// SetStatus changes the status and keeps CompletedAt consistent with it.
// Completing stamps now unless the task was already completed. Any other
// status clears the completion time.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	if status == TaskStatusCompleted {
		if t.Status != TaskStatusCompleted || t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
}

// Snapshot returns the read-only view streak calculations work on.
func (t *Task) Snapshot() TaskSnapshot {
	updated := t.UpdatedAt
	snap := TaskSnapshot{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
	}
	if !updated.IsZero() {
		snap.UpdatedAt = &updated
	}
	return snap
}

// TaskSnapshot is the minimal view of a task used for streak derivation.
// A non-nil timestamp pointing at the zero time marks a value that could
// not be parsed from storage.
type TaskSnapshot struct {
	ID          string
	OwnerID     string
	Status      TaskStatus
	DueDate     *time.Time
	CompletedAt *time.Time
	UpdatedAt   *time.Time
}

// NormalizeLabels canonicalises and deduplicates labels, keeping first-seen order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = normalize.Label(l)
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// TaskSort is a sortable task column.
type TaskSort string

// Sortable task columns.
const (
	TaskSortCreatedAt TaskSort = "created_at"
	TaskSortUpdatedAt TaskSort = "updated_at"
	TaskSortDueDate   TaskSort = "due_date"
	TaskSortPriority  TaskSort = "priority"
	TaskSortTitle     TaskSort = "title"
)

// Valid reports whether s is a known sort column.
func (s TaskSort) Valid() bool {
	switch s {
	case TaskSortCreatedAt, TaskSortUpdatedAt, TaskSortDueDate, TaskSortPriority, TaskSortTitle:
		return true
	}
	return false
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Status     TaskStatus
	Priority   int
	Labels     []string // any-match
	Sort       TaskSort
	Descending bool
	Limit      int // 0 = no limit
}

// TaskStats counts a user's tasks by status.
type TaskStats struct {
	ByStatus map[TaskStatus]int `json:"by_status"`
	Total    int                `json:"total"`
}
