package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

func (s *Server) registerStreakRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStreak",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/streak",
		Summary:     "Get streak",
		Description: "Computes the user's current and best streak plus this week's calendar",
		Tags:        []string{"Streaks"},
		Security:    bearer,
	}, s.handleGetStreak)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateStreak",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}/streak",
		Summary:     "Set streak count",
		Description: "Persists a streak count reported by the client. Only allowed for yourself.",
		Tags:        []string{"Streaks"},
		Security:    bearer,
	}, s.handleUpdateStreak)

	huma.Register(s.api, huma.Operation{
		OperationID: "syncStreak",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/streak/sync",
		Summary:     "Recompute streak",
		Description: "Recomputes the streak from completed tasks and persists the current count. Only allowed for yourself.",
		Tags:        []string{"Streaks"},
		Security:    bearer,
	}, s.handleSyncStreak)
}

// === DTOs ===

// StreakInput identifies a user and the timezone days are counted in.
type StreakInput struct {
	ID       string `path:"id" doc:"User ID"`
	Timezone string `query:"tz" doc:"IANA timezone (default: server timezone)"`
}

// StreakSummaryOutput wraps a computed streak for Huma.
type StreakSummaryOutput struct {
	Body *domain.StreakSummary
}

// UpdateStreakRequest is the request body for setting a streak count.
type UpdateStreakRequest struct {
	Count int `json:"count" doc:"Streak count, zero or more"`
}

// UpdateStreakInput wraps the streak update for Huma.
type UpdateStreakInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateStreakRequest
}

// StreakOutput wraps a persisted streak for Huma.
type StreakOutput struct {
	Body *domain.Streak
}

// === Handlers ===

func (s *Server) handleGetStreak(ctx context.Context, input *StreakInput) (*StreakSummaryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	loc, err := s.location(input.Timezone)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Streaks.GetStreak(ctx, input.ID, loc)
	if err != nil {
		return nil, err
	}
	return &StreakSummaryOutput{Body: summary}, nil
}

func (s *Server) handleUpdateStreak(ctx context.Context, input *UpdateStreakInput) (*StreakOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	streak, err := s.services.Users.UpdateStreak(ctx, userID, input.ID, input.Body.Count)
	if err != nil {
		return nil, err
	}
	return &StreakOutput{Body: streak}, nil
}

func (s *Server) handleSyncStreak(ctx context.Context, input *StreakInput) (*StreakSummaryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if userID != input.ID {
		return nil, domainerrors.Forbidden("you can only sync your own streak")
	}

	loc, err := s.location(input.Timezone)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Streaks.SyncStreak(ctx, userID, loc)
	if err != nil {
		return nil, err
	}
	return &StreakSummaryOutput{Body: summary}, nil
}
