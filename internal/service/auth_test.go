package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

var client = ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "  Alice@Example.com ",
		Username: "alice",
		Name:     "Alice",
		Password: "password123",
	}, client)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)

	claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, resp.SessionID, claims.SessionID)
}

func TestAuthService_Register_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email: "ALICE@example.com", Username: "other", Password: "password123",
	}, client)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = env.auth.Register(ctx, RegisterRequest{
		Email: "other@example.com", Username: "ALICE", Password: "password123",
	}, client)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"short password", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "short"}, "password"},
		{"bad email", RegisterRequest{Email: "nope", Username: "alice", Password: "password123"}, "email"},
		{"bad username", RegisterRequest{Email: "a@example.com", Username: "a!", Password: "password123"}, "username"},
		{"missing username", RegisterRequest{Email: "a@example.com", Password: "password123"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req, client)
			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domainerrors.CodeValidation, de.Code)
			assert.Contains(t, de.Details, tt.field)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "bob")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "BOB@example.com", Password: "correct horse"}, client)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "wrong password"}, client)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct horse"}, client)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Refresh_Rotates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "carol")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "correct horse"}, client)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	refreshed, err := env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, client)
	require.NoError(t, err)
	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, client)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: "garbage"}, client)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "dan")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "dan@example.com", Password: "correct horse"}, client)
	require.NoError(t, err)

	env.clock.Advance(31 * 24 * time.Hour)
	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, client)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "erin")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "erin@example.com", Password: "correct horse"}, client)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, RefreshRequest{RefreshToken: login.RefreshToken}))
	require.NoError(t, env.auth.Logout(ctx, RefreshRequest{RefreshToken: login.RefreshToken}))

	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, client)
	assert.Error(t, err)

	// The access token dies with its session.
	_, err = env.auth.VerifyAccessToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "fay")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "fay@example.com", Password: "correct horse"}, client)
	require.NoError(t, err)

	_, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	env.clock.Advance(16 * time.Minute)
	_, err = env.auth.VerifyAccessToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "gus")

	_, err := env.sessions.CreateSession(ctx, user, client)
	require.NoError(t, err)
	_, err = env.sessions.CreateSession(ctx, user, client)
	require.NoError(t, err)

	sessions, err := env.sessions.ListUserSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	env.clock.Advance(31 * 24 * time.Hour)
	n, err := env.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
