package api

import (
	"context"

	"github.com/streakboard/streakboard-server/internal/quote"
	"github.com/streakboard/streakboard-server/internal/service"
)

// QuoteSource supplies motivational quotes.
type QuoteSource interface {
	Random(ctx context.Context) (*quote.Quote, error)
}

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Tasks       *service.TaskService
	Follows     *service.FollowService
	Streaks     *service.StreakService
	Leaderboard *service.LeaderboardService
	Quotes      QuoteSource
}
