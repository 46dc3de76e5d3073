package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
	"github.com/streakboard/streakboard-server/internal/streak"
)

// StreakService derives streaks from a user's completed tasks.
type StreakService struct {
	tasks     store.TaskStore
	users     store.UserStore
	logger    *slog.Logger
	now       Clock
	weekStart time.Weekday
}

// NewStreakService creates a streak service. Weekly calendars start on Sunday.
func NewStreakService(tasks store.TaskStore, users store.UserStore, logger *slog.Logger, now Clock) *StreakService {
	return &StreakService{
		tasks:     tasks,
		users:     users,
		logger:    loggerOrDiscard(logger),
		now:       clockOrNow(now),
		weekStart: time.Sunday,
	}
}

// GetStreak computes userID's streak with days bucketed in loc.
func (s *StreakService) GetStreak(ctx context.Context, userID string, loc *time.Location) (*domain.StreakSummary, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "get user")
	}
	return s.compute(ctx, userID, loc)
}

// SyncStreak recomputes userID's streak and persists the current run as
// the user's streak count.
func (s *StreakService) SyncStreak(ctx context.Context, userID string, loc *time.Location) (*domain.StreakSummary, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "get user")
	}

	summary, err := s.compute(ctx, userID, loc)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateUserStreak(ctx, userID, summary.Current, summary.ComputedAt); err != nil {
		return nil, translate(err, "persist streak")
	}

	s.logger.Info("streak synced", "user_id", userID, "current", summary.Current, "best", summary.Best)
	return summary, nil
}

// CompletedToday counts tasks userID completed on today's date in loc.
func (s *StreakService) CompletedToday(ctx context.Context, userID string, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}
	snaps, err := s.tasks.ListTaskSnapshots(ctx, userID)
	if err != nil {
		return 0, translate(err, "list task snapshots")
	}
	now := s.now().In(loc)
	return streak.CompletedOn(snaps, streak.DayOf(now, loc), loc), nil
}

func (s *StreakService) compute(ctx context.Context, userID string, loc *time.Location) (*domain.StreakSummary, error) {
	if loc == nil {
		loc = time.UTC
	}

	snaps, err := s.tasks.ListTaskSnapshots(ctx, userID)
	if err != nil {
		return nil, translate(err, "list task snapshots")
	}

	now := s.now().In(loc)
	res := streak.Compute(snaps, now)
	if res.Substituted > 0 || res.Skipped > 0 {
		s.logger.Warn("streak computed from incomplete task data",
			"user_id", userID,
			"substituted", res.Substituted,
			"skipped", res.Skipped,
		)
	}

	return &domain.StreakSummary{
		UserID:         userID,
		Current:        res.Current,
		Best:           res.Best,
		CompletedToday: streak.CompletedOn(snaps, streak.DayOf(now, loc), loc),
		Week:           streak.Week(streak.CompletedDays(snaps, loc), now, s.weekStart),
		Timezone:       loc.String(),
		ComputedAt:     now,
	}, nil
}
