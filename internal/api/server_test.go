package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/http/response"
	"github.com/streakboard/streakboard-server/internal/quote"
	"github.com/streakboard/streakboard-server/internal/search"
	"github.com/streakboard/streakboard-server/internal/service"
	"github.com/streakboard/streakboard-server/internal/store/kv"
	"github.com/streakboard/streakboard-server/internal/store/sqlite"
)

// testEnvelope mirrors response.Envelope with typed data.
type testEnvelope[T any] struct {
	V       int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope
}

type stubQuotes struct {
	quote *quote.Quote
	err   error
}

func (s stubQuotes) Random(context.Context) (*quote.Quote, error) { return s.quote, s.err }

type testServer struct {
	*Server
	api    humatest.TestAPI
	db     *sqlite.Store
	tokens *auth.TokenService
	logs   *bytes.Buffer
}

// setupTestServer wires the API against temp-dir sqlite, badger and bleve.
// configure may adjust the server options before the server is built.
func setupTestServer(t *testing.T, configure ...func(*Options, *Services)) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db, err := sqlite.Open(filepath.Join(tmpDir, "streakboard.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := kv.Open(filepath.Join(tmpDir, "sessions"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokenService, err := auth.NewTokenService(bytes.Repeat([]byte{42}, 32), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessionService := service.NewSessionService(sessions, db, tokenService, logger, nil)
	streakService := service.NewStreakService(db, db, logger, nil)
	userService := service.NewUserService(db, db, index, auth.NewHasher(auth.FastParams), sessionService, streakService, logger, nil)

	services := &Services{
		Auth:        service.NewAuthService(userService, sessionService, tokenService, logger),
		Users:       userService,
		Tasks:       service.NewTaskService(db, db, logger, nil),
		Follows:     service.NewFollowService(db, db, logger, nil),
		Streaks:     streakService,
		Leaderboard: service.NewLeaderboardService(db, db, db, service.LeaderboardOptions{}, logger, nil),
		Quotes:      stubQuotes{quote: &quote.Quote{Text: "Well begun is half done.", Author: "Aristotle"}},
	}
	opts := Options{
		Location: time.UTC,
		HealthChecks: map[string]HealthCheck{
			"database": func(context.Context) error { return db.Ping() },
		},
	}
	for _, fn := range configure {
		fn(&opts, services)
	}

	server := NewServer(services, opts, logger)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.api),
		db:     db,
		tokens: tokenService,
		logs:   logs,
	}
}

// testUser is a registered account with a live access token.
type testUser struct {
	ID           string
	AccessToken  string
	RefreshToken string
}

// bearer returns the Authorization header line for u.
func (u testUser) bearer() string {
	return "Authorization: Bearer " + u.AccessToken
}

// register signs up username and returns its tokens.
func (ts *testServer) register(t *testing.T, username string) testUser {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": "SecurePassword123!",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Register failed: %s", resp.Body.String())

	envelope := decodeEnvelope[AuthResponse](t, resp)
	return testUser{
		ID:           envelope.Data.User.ID,
		AccessToken:  envelope.Data.AccessToken,
		RefreshToken: envelope.Data.RefreshToken,
	}
}

func TestServer_Routes(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "health check",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "quote is public",
			method:         http.MethodGet,
			path:           "/api/v1/quote",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			method:         http.MethodGet,
			path:           "/api/v1/nonexistent",
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "protected without token",
			method:         http.MethodGet,
			path:           "/api/v1/users/me",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			ts.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var result response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, response.Version, result.V)
			assert.Equal(t, tt.expectedCode, result.Code)
		})
	}
}

func TestServer_InvalidToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope[any](t, resp).Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestServer_ExpiredToken(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "alice")

	// Issue a token for the same session from a clock two hours behind.
	claims, err := ts.tokens.VerifyAccessToken(user.AccessToken)
	require.NoError(t, err)
	past := ts.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	stale, err := past.GenerateAccessToken(claims.UserID, claims.SessionID)
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+stale)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeEnvelope[any](t, resp).Code)
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t, func(o *Options, _ *Services) {
		o.CORSOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_LogsRequests(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Get("/health")

	logs := ts.logs.String()
	assert.Contains(t, logs, "HTTP request")
	assert.Contains(t, logs, "path=/health")
	assert.Contains(t, logs, "status=200")
}

func TestServer_UnhandledErrorIsInternal(t *testing.T) {
	ts := setupTestServer(t, func(_ *Options, s *Services) {
		s.Quotes = stubQuotes{err: errors.New("boom")}
	})

	resp := ts.api.Get("/api/v1/quote")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Code)
	assert.NotContains(t, envelope.Error, "boom")
}
