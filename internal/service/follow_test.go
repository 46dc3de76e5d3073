package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

func TestFollowService_Follow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	res, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.False(t, res.AlreadyFollowing)

	res, err = env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyFollowing)

	ok, err := env.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.follows.Follow(ctx, alice.ID, alice.ID)
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodeValidation, de.Code)
	assert.Equal(t, "cannot follow yourself", de.Message)

	_, err = env.follows.Follow(ctx, alice.ID, "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFollowService_Unfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	removed, err := env.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = env.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowService_Lists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	star := env.register(t, "star")
	fans := []string{"fan_one", "fan_two", "fan_three"}
	for _, name := range fans {
		fan := env.register(t, name)
		env.clock.Advance(time.Minute)
		_, err := env.follows.Follow(ctx, fan.ID, star.ID)
		require.NoError(t, err)
	}

	followers, err := env.follows.Followers(ctx, star.ID)
	require.NoError(t, err)
	require.Equal(t, 3, followers.Count)
	for i, u := range followers.Users {
		assert.Equal(t, fans[i], u.Username, "ordered by follow time")
		assert.NotEmpty(t, u.AvatarColor)
	}

	n, err := env.follows.FollowerCount(ctx, star.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	following, err := env.follows.Following(ctx, star.ID)
	require.NoError(t, err)
	assert.Zero(t, following.Count)
	assert.NotNil(t, following.Users)

	n, err = env.follows.FollowingCount(ctx, followers.Users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.follows.Followers(ctx, "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
