package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakboard/streakboard-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func makeUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	u := &domain.User{
		Record:       domain.Record{ID: "usr-" + username, CreatedAt: now, UpdatedAt: now},
		Email:        username + "@example.com",
		Username:     username,
		Name:         "",
		PasswordHash: "hash",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func makeTask(t *testing.T, s *Store, owner string, n int, mutate func(*domain.Task)) *domain.Task {
	t.Helper()
	created := time.Date(2024, 1, 1, 9, 0, n, 0, time.UTC)
	task := &domain.Task{
		Record:   domain.Record{ID: fmt.Sprintf("task-%s-%d", owner, n), CreatedAt: created, UpdatedAt: created},
		OwnerID:  owner,
		Title:    fmt.Sprintf("task %d", n),
		Status:   domain.TaskStatusPending,
		Priority: domain.DefaultPriority,
	}
	if mutate != nil {
		mutate(task)
	}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"users", "tasks", "follows"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(500 * time.Millisecond)

	assert.Less(t, formatTime(base), formatTime(later))

	parsed, err := parseTime(formatTime(later))
	require.NoError(t, err)
	assert.True(t, later.Equal(parsed))
}

func TestLenientTime(t *testing.T) {
	assert.Nil(t, lenientTime(nullString("")))

	bad := lenientTime(nullString("yesterday-ish"))
	require.NotNil(t, bad)
	assert.True(t, bad.IsZero())

	good := lenientTime(nullString("2024-01-03T10:00:00Z"))
	require.NotNil(t, good)
	assert.Equal(t, 3, good.Day())
}
