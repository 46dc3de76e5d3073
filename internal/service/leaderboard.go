package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/streakboard/streakboard-server/internal/color"
	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/store"
	"github.com/streakboard/streakboard-server/internal/streak"
)

// LeaderboardService ranks the users someone follows by recent completions.
type LeaderboardService struct {
	users         store.UserStore
	tasks         store.TaskStore
	follows       store.FollowStore
	logger        *slog.Logger
	now           Clock
	defaultWindow int
	limit         int
}

// LeaderboardOptions holds leaderboard defaults.
type LeaderboardOptions struct {
	WindowDays int // used when a request passes 0
	Limit      int
}

// NewLeaderboardService creates a leaderboard service.
func NewLeaderboardService(
	users store.UserStore,
	tasks store.TaskStore,
	follows store.FollowStore,
	opts LeaderboardOptions,
	logger *slog.Logger,
	now Clock,
) *LeaderboardService {
	if opts.WindowDays <= 0 {
		opts.WindowDays = domain.DefaultLeaderboardWindowDays
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultLeaderboardLimit
	}
	return &LeaderboardService{
		users:         users,
		tasks:         tasks,
		follows:       follows,
		logger:        loggerOrDiscard(logger),
		now:           clockOrNow(now),
		defaultWindow: opts.WindowDays,
		limit:         opts.Limit,
	}
}

// GetLeaderboard ranks followerID's followees over the last windowDays.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, followerID string, windowDays int) (*domain.Leaderboard, error) {
	return s.GetLeaderboardAt(ctx, followerID, windowDays, s.now())
}

// GetLeaderboardAt is GetLeaderboard with an explicit reference time.
// A windowDays of 0 selects the configured default.
func (s *LeaderboardService) GetLeaderboardAt(ctx context.Context, followerID string, windowDays int, now time.Time) (*domain.Leaderboard, error) {
	if windowDays == 0 {
		windowDays = s.defaultWindow
	}
	if windowDays < 1 || windowDays > domain.MaxLeaderboardWindowDays {
		return nil, domainerrors.ValidationWithDetails("invalid window_days", map[string]string{
			"window_days": "must be between 1 and 365",
		})
	}

	if _, err := s.users.GetUser(ctx, followerID); err != nil {
		return nil, translate(err, "get user")
	}

	since, until := streak.Window(now, windowDays)
	board := &domain.Leaderboard{
		Leaders:    []domain.LeaderboardEntry{},
		WindowDays: windowDays,
		Since:      since,
		Until:      until,
	}

	followees, err := s.follows.ListFolloweeIDs(ctx, followerID)
	if err != nil {
		return nil, translate(err, "list followees")
	}
	if len(followees) == 0 {
		return board, nil
	}

	live, err := s.users.GetUsersByIDs(ctx, followees)
	if err != nil {
		return nil, translate(err, "load followees")
	}
	if len(live) == 0 {
		return board, nil
	}

	ids := make([]string, 0, len(live))
	identities := make(map[string]domain.Identity, len(live))
	for _, fid := range followees {
		if u, ok := live[fid]; ok {
			ids = append(ids, fid)
			identities[fid] = u.Identity()
		}
	}

	counts, err := s.tasks.CountCompletedByOwner(ctx, ids, since, until)
	if err != nil {
		return nil, translate(err, "count completions")
	}

	for _, row := range streak.Rank(followees, counts, identities, s.limit) {
		board.Leaders = append(board.Leaders, domain.LeaderboardEntry{
			Rank:        row.Rank,
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Username:    row.Username,
			Points:      row.Points,
			AvatarColor: color.ForUser(row.UserID),
		})
	}

	s.logger.Debug("leaderboard computed",
		"user_id", followerID,
		"window_days", windowDays,
		"followees", len(followees),
		"leaders", len(board.Leaders),
	)
	return board, nil
}
