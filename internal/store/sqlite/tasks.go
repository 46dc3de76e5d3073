package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
)

const taskColumns = `id, owner_id, created_at, updated_at, title, status, due_date,
	priority, notes, labels, checklist, completed_at`

// taskSortColumns maps sort keys to SQL. Only these strings reach ORDER BY.
var taskSortColumns = map[domain.TaskSort]string{
	domain.TaskSortCreatedAt: "created_at",
	domain.TaskSortUpdatedAt: "updated_at",
	domain.TaskSortDueDate:   "due_date",
	domain.TaskSortPriority:  "priority",
	domain.TaskSortTitle:     "title COLLATE NOCASE",
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task

	var (
		createdAt   string
		updatedAt   string
		status      string
		dueDate     sql.NullString
		labels      string
		checklist   string
		completedAt sql.NullString
	)

	err := scanner.Scan(
		&t.ID,
		&t.OwnerID,
		&createdAt,
		&updatedAt,
		&t.Title,
		&status,
		&dueDate,
		&t.Priority,
		&t.Notes,
		&labels,
		&checklist,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if t.DueDate, err = parseNullableTime(dueDate); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(labels), &t.Labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if err := json.Unmarshal([]byte(checklist), &t.Checklist); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.Checklist == nil {
		t.Checklist = []domain.ChecklistItem{}
	}

	return &t, nil
}

func encodeTaskLists(t *domain.Task) (labels, checklist string, err error) {
	l := t.Labels
	if l == nil {
		l = []string{}
	}
	c := t.Checklist
	if c == nil {
		c = []domain.ChecklistItem{}
	}
	lb, err := json.Marshal(l)
	if err != nil {
		return "", "", fmt.Errorf("encode labels: %w", err)
	}
	cb, err := json.Marshal(c)
	if err != nil {
		return "", "", fmt.Errorf("encode checklist: %w", err)
	}
	return string(lb), string(cb), nil
}

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	labels, checklist, err := encodeTaskLists(task)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.OwnerID,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
		task.Title,
		string(task.Status),
		nullTimeString(task.DueDate),
		task.Priority,
		task.Notes,
		labels,
		checklist,
		nullTimeString(task.CompletedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetTask retrieves a task by ID.
// Returns store.ErrTaskNotFound if it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask rewrites every mutable column of a task.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	labels, checklist, err := encodeTaskLists(task)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			updated_at = ?,
			title = ?,
			status = ?,
			due_date = ?,
			priority = ?,
			notes = ?,
			labels = ?,
			checklist = ?,
			completed_at = ?
		WHERE id = ?`,
		formatTime(task.UpdatedAt),
		task.Title,
		string(task.Status),
		nullTimeString(task.DueDate),
		task.Priority,
		task.Notes,
		labels,
		checklist,
		nullTimeString(task.CompletedAt),
		task.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrTaskNotFound)
}

// DeleteTask removes a task permanently.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrTaskNotFound)
}

// ListTasksByOwner lists a user's tasks narrowed and ordered by filter.
func (s *Store) ListTasksByOwner(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	var (
		where = []string{"owner_id = ?"}
		args  = []any{ownerID}
	)

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != 0 {
		where = append(where, "priority = ?")
		args = append(args, filter.Priority)
	}
	if len(filter.Labels) > 0 {
		marks, labelArgs := placeholders(filter.Labels)
		where = append(where, `EXISTS (SELECT 1 FROM json_each(tasks.labels) WHERE json_each.value IN (`+marks+`))`)
		args = append(args, labelArgs...)
	}

	column, ok := taskSortColumns[filter.Sort]
	if !ok {
		column = taskSortColumns[domain.TaskSortCreatedAt]
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ")
	if filter.Sort == domain.TaskSortDueDate {
		// Undated tasks last in either direction.
		query += ` ORDER BY due_date IS NULL, ` + column + ` ` + direction
	} else {
		query += ` ORDER BY ` + column + ` ` + direction
	}
	query += `, created_at ` + direction + `, id ` + direction

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountTasksByStatus groups a user's tasks by status.
func (s *Store) CountTasksByStatus(ctx context.Context, ownerID string) (map[domain.TaskStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE owner_id = ? GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.TaskStatus(status)] = n
	}
	return counts, rows.Err()
}

// ListTaskSnapshots returns the streak-relevant fields of every task of ownerID.
func (s *Store) ListTaskSnapshots(ctx context.Context, ownerID string) ([]domain.TaskSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, status, due_date, completed_at, updated_at
		FROM tasks WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []domain.TaskSnapshot
	for rows.Next() {
		var (
			snap                            domain.TaskSnapshot
			status                          string
			dueDate, completedAt, updatedAt sql.NullString
		)
		if err := rows.Scan(&snap.ID, &snap.OwnerID, &status, &dueDate, &completedAt, &updatedAt); err != nil {
			return nil, err
		}
		snap.Status = domain.TaskStatus(status)
		snap.DueDate = lenientTime(dueDate)
		snap.CompletedAt = lenientTime(completedAt)
		snap.UpdatedAt = lenientTime(updatedAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// CountCompletedByOwner counts completed tasks per owner with completed_at in [since, until).
func (s *Store) CountCompletedByOwner(ctx context.Context, ownerIDs []string, since, until time.Time) (map[string]int, error) {
	counts := make(map[string]int, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}

	marks, args := placeholders(ownerIDs)
	args = append(args, formatTime(since), formatTime(until))

	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, COUNT(*) FROM tasks
		WHERE owner_id IN (`+marks+`)
		  AND status = 'completed'
		  AND completed_at >= ? AND completed_at < ?
		GROUP BY owner_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner string
			n     int
		)
		if err := rows.Scan(&owner, &n); err != nil {
			return nil, err
		}
		counts[owner] = n
	}
	return counts, rows.Err()
}
