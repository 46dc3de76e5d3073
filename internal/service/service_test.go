package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/search"
	"github.com/streakboard/streakboard-server/internal/store/kv"
	"github.com/streakboard/streakboard-server/internal/store/sqlite"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testEnv wires every service against temp-dir sqlite, badger and bleve.
type testEnv struct {
	clock  *fakeClock
	logs   *bytes.Buffer
	db     *sqlite.Store
	kv     *kv.Store
	index  *search.SearchIndex
	tokens *auth.TokenService

	sessions    *SessionService
	users       *UserService
	auth        *AuthService
	tasks       *TaskService
	follows     *FollowService
	streaks     *StreakService
	leaderboard *LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)} // a Wednesday
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "streakboard.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessionStore, err := kv.Open(filepath.Join(dir, "sessions"), logger, kv.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { sessionStore.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	tokens = tokens.WithClock(clock.Now)

	env := &testEnv{clock: clock, logs: logs, db: db, kv: sessionStore, index: index, tokens: tokens}
	env.sessions = NewSessionService(sessionStore, db, tokens, logger, clock.Now)
	env.streaks = NewStreakService(db, db, logger, clock.Now)
	env.users = NewUserService(db, db, index, auth.NewHasher(auth.FastParams), env.sessions, env.streaks, logger, clock.Now)
	env.auth = NewAuthService(env.users, env.sessions, tokens, logger)
	env.tasks = NewTaskService(db, db, logger, clock.Now)
	env.follows = NewFollowService(db, db, logger, clock.Now)
	env.leaderboard = NewLeaderboardService(db, db, db, LeaderboardOptions{}, logger, clock.Now)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterRequest{
		Email:    username + "@example.com",
		Username: username,
		Name:     "",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

// complete creates a task for owner and completes it at the current clock time.
func (e *testEnv) complete(t *testing.T, owner string) *domain.Task {
	t.Helper()
	status := domain.TaskStatusCompleted
	task, err := e.tasks.Create(context.Background(), owner, CreateTaskRequest{Title: "done", Status: status})
	require.NoError(t, err)
	return task
}
