package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
)

func TestCreateUser_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, s, "alice")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.DeletedAt)
	assert.Nil(t, got.StreakUpdatedAt)
}

func TestCreateUser_CaseInsensitiveUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeUser(t, s, "alice")

	now := time.Now()
	dupEmail := &domain.User{
		Record:   domain.Record{ID: "usr-2", CreatedAt: now, UpdatedAt: now},
		Email:    "ALICE@example.com",
		Username: "someone",
	}
	err := s.CreateUser(ctx, dupEmail)
	assert.Same(t, store.ErrEmailTaken, err)

	dupName := &domain.User{
		Record:   domain.Record{ID: "usr-3", CreatedAt: now, UpdatedAt: now},
		Email:    "other@example.com",
		Username: "Alice",
	}
	err = s.CreateUser(ctx, dupName)
	assert.Same(t, store.ErrUsernameTaken, err)
}

func TestGetUserByEmailAndUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeUser(t, s, "bob")

	byEmail, err := s.GetUserByEmail(ctx, "  BOB@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := s.GetUserByUsername(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetUsersByIDs_SkipsDeletedAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := makeUser(t, s, "a")
	b := makeUser(t, s, "b")
	require.NoError(t, s.DeleteUser(ctx, b.ID, time.Now()))

	users, err := s.GetUsersByIDs(ctx, []string{a.ID, b.ID, "usr-ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, users, a.ID)

	empty, err := s.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeUser(t, s, "carol")
	makeUser(t, s, "dave")

	u.Name = "Carol C"
	u.UpdatedAt = u.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.UpdateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol C", got.Name)

	u.Username = "DAVE"
	assert.Same(t, store.ErrUsernameTaken, s.UpdateUser(ctx, u))

	ghost := &domain.User{Record: domain.Record{ID: "usr-ghost"}, Email: "g@x.io", Username: "ghost"}
	assert.ErrorIs(t, s.UpdateUser(ctx, ghost), store.ErrNotFound)
}

func TestUpdateUserStreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeUser(t, s, "erin")

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateUserStreak(ctx, u.ID, 4, at))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StreakCount)
	require.NotNil(t, got.StreakUpdatedAt)
	assert.True(t, at.Equal(*got.StreakUpdatedAt))
}

func TestDeleteUser_Soft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeUser(t, s, "frank")

	require.NoError(t, s.DeleteUser(ctx, u.ID, time.Now()))

	_, err := s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID, time.Now()), store.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// Deleted accounts keep their email reserved.
	now := time.Now()
	again := &domain.User{
		Record:   domain.Record{ID: "usr-new", CreatedAt: now, UpdatedAt: now},
		Email:    u.Email,
		Username: "frank2",
	}
	assert.Same(t, store.ErrEmailTaken, s.CreateUser(ctx, again))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "u.id, u.name", prefixed("u.", "id,\n\tname"))
}
