package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/domain"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/leaderboard",
		Summary:     "Friends leaderboard",
		Description: "Ranks the users {id} follows by tasks completed in the trailing window",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleGetLeaderboard)
}

// LeaderboardInput contains leaderboard parameters.
type LeaderboardInput struct {
	ID         string `path:"id" doc:"Follower user ID"`
	WindowDays int    `query:"window_days" doc:"Trailing window in days, 1-365 (default 7)"`
}

// LeaderboardOutput wraps a leaderboard for Huma.
type LeaderboardOutput struct {
	Body *domain.Leaderboard
}

func (s *Server) handleGetLeaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	board, err := s.services.Leaderboard.GetLeaderboard(ctx, input.ID, input.WindowDays)
	if err != nil {
		return nil, err
	}
	return &LeaderboardOutput{Body: board}, nil
}
