package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, deleted_at, email, username, name,
	password_hash, streak_count, streak_updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt       string
		updatedAt       string
		deletedAt       sql.NullString
		streakUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&u.Email,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.StreakCount,
		&streakUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	if u.StreakUpdatedAt, err = parseNullableTime(streakUpdatedAt); err != nil {
		return nil, err
	}

	return &u, nil
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// uniqueViolation maps a UNIQUE failure to the taken field.
func uniqueViolation(err error) error {
	switch msg := err.Error(); {
	case strings.Contains(msg, "email_lower"):
		return store.ErrEmailTaken
	case strings.Contains(msg, "username_lower"):
		return store.ErrUsernameTaken
	default:
		return store.ErrAlreadyExists
	}
}

// CreateUser inserts a new user.
// Returns store.ErrEmailTaken or store.ErrUsernameTaken on conflicts.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, deleted_at, email, email_lower,
			username, username_lower, name, password_hash, streak_count, streak_updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		nullTimeString(user.DeletedAt),
		user.Email,
		lower(user.Email),
		user.Username,
		lower(user.Username),
		user.Name,
		user.PasswordHash,
		user.StreakCount,
		nullTimeString(user.StreakUpdatedAt),
	)
	if isUniqueViolation(err) {
		return uniqueViolation(err)
	}
	return err
}

func (s *Store) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where+` AND deleted_at IS NULL`, arg)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser retrieves a user by ID, excluding soft-deleted records.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by case-insensitive email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email_lower = ?", lower(email))
}

// GetUserByUsername retrieves a user by case-insensitive username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, "username_lower = ?", lower(username))
}

// GetUsersByIDs returns the live users among ids keyed by ID.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	marks, args := placeholders(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+marks+`) AND deleted_at IS NULL`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// ListUsers returns all non-deleted users, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser rewrites the mutable profile columns of a live user.
// Returns store.ErrUserNotFound if the user does not exist or is soft-deleted.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?,
			email = ?,
			email_lower = ?,
			username = ?,
			username_lower = ?,
			name = ?,
			password_hash = ?,
			streak_count = ?,
			streak_updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(user.UpdatedAt),
		user.Email,
		lower(user.Email),
		user.Username,
		lower(user.Username),
		user.Name,
		user.PasswordHash,
		user.StreakCount,
		nullTimeString(user.StreakUpdatedAt),
		user.ID,
	)
	if isUniqueViolation(err) {
		return uniqueViolation(err)
	}
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrUserNotFound)
}

// UpdateUserStreak persists the streak counter.
func (s *Store) UpdateUserStreak(ctx context.Context, id string, count int, at time.Time) error {
	ts := formatTime(at)
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET streak_count = ?, streak_updated_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		count, ts, ts, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrUserNotFound)
}

// DeleteUser performs a soft delete by setting deleted_at and updated_at.
// Returns store.ErrUserNotFound if the user does not exist or is already deleted.
func (s *Store) DeleteUser(ctx context.Context, id string, at time.Time) error {
	ts := formatTime(at)
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		ts, ts, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrUserNotFound)
}

// expectOne returns notFound when result touched no rows.
func expectOne(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// prefixed qualifies every column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
