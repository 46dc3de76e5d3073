package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/store"
)

func TestLeaderboardService_Ranks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.register(t, "viewer")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	dave := env.register(t, "dave")
	erin := env.register(t, "erin")

	for _, u := range []string{dave.ID, carol.ID, bob.ID, erin.ID} {
		env.clock.Advance(time.Second)
		_, err := env.follows.Follow(ctx, me.ID, u)
		require.NoError(t, err)
	}

	now := env.clock.t
	for range 3 {
		env.completeAt(t, bob.ID, now.Add(-time.Hour))
	}
	env.completeAt(t, carol.ID, now.AddDate(0, 0, -2))
	env.completeAt(t, carol.ID, now.AddDate(0, 0, -8)) // outside the default window
	for range 5 {
		env.completeAt(t, erin.ID, now.Add(-time.Hour))
	}
	env.complete(t, me.ID) // own tasks never count
	require.NoError(t, env.users.DeleteAccount(ctx, erin.ID))

	board, err := env.leaderboard.GetLeaderboard(ctx, me.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, board.WindowDays)
	assert.True(t, board.Until.Equal(now))
	assert.True(t, board.Since.Equal(now.Add(-7*24*time.Hour)))

	require.Len(t, board.Leaders, 3)
	assert.Equal(t, bob.ID, board.Leaders[0].UserID)
	assert.Equal(t, 3, board.Leaders[0].Points)
	assert.Equal(t, 1, board.Leaders[0].Rank)
	assert.Equal(t, carol.ID, board.Leaders[1].UserID)
	assert.Equal(t, 1, board.Leaders[1].Points)
	assert.Equal(t, dave.ID, board.Leaders[2].UserID)
	assert.Equal(t, 0, board.Leaders[2].Points)
	assert.Equal(t, 3, board.Leaders[2].Rank)
	assert.Equal(t, "dave", board.Leaders[2].DisplayName)
	assert.NotEmpty(t, board.Leaders[2].AvatarColor)

	wide, err := env.leaderboard.GetLeaderboard(ctx, me.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, wide.Leaders[1].Points)
}

func TestLeaderboardService_WindowValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.register(t, "viewer")

	for _, days := range []int{-1, 366} {
		_, err := env.leaderboard.GetLeaderboard(ctx, me.ID, days)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "window %d", days)
	}
	for _, days := range []int{1, 365} {
		board, err := env.leaderboard.GetLeaderboard(ctx, me.ID, days)
		require.NoError(t, err)
		assert.Equal(t, days, board.WindowDays)
	}

	_, err := env.leaderboard.GetLeaderboard(ctx, "usr-missing", 7)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

type noFollowees struct{ store.FollowStore }

func (noFollowees) ListFolloweeIDs(context.Context, string) ([]string, error) { return nil, nil }

type strictTasks struct {
	store.TaskStore
	t *testing.T
}

func (s strictTasks) CountCompletedByOwner(context.Context, []string, time.Time, time.Time) (map[string]int, error) {
	s.t.Fatal("CountCompletedByOwner called without followees")
	return nil, nil
}

func TestLeaderboardService_NoFolloweesSkipsAggregate(t *testing.T) {
	env := newTestEnv(t)
	me := env.register(t, "viewer")

	svc := NewLeaderboardService(env.db, strictTasks{t: t}, noFollowees{}, LeaderboardOptions{}, nil, env.clock.Now)
	board, err := svc.GetLeaderboard(context.Background(), me.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, board.Leaders)
	assert.Empty(t, board.Leaders)
}
