package service

import (
	"context"
	"log/slog"

	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/store"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	follows store.FollowStore
	users   store.UserStore
	logger  *slog.Logger
	now     Clock
}

// NewFollowService creates a follow service.
func NewFollowService(follows store.FollowStore, users store.UserStore, logger *slog.Logger, now Clock) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
		logger:  loggerOrDiscard(logger),
		now:     clockOrNow(now),
	}
}

// FollowResult reports the state of a follow edge after Follow.
type FollowResult struct {
	FolloweeID       string `json:"followee_id"`
	Following        bool   `json:"following"`
	AlreadyFollowing bool   `json:"already_following"`
}

// FollowList is a page of users with the total.
type FollowList struct {
	Users []domain.PublicUser `json:"users"`
	Count int                 `json:"count"`
}

// Follow makes followerID follow followeeID. Following twice is not an error.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) (*FollowResult, error) {
	if followerID == followeeID {
		return nil, domainerrors.Validation("cannot follow yourself")
	}
	if _, err := s.users.GetUser(ctx, followeeID); err != nil {
		return nil, translate(err, "get followee")
	}

	created, err := s.follows.CreateFollow(ctx, &domain.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, translate(err, "create follow")
	}

	if created {
		s.logger.Debug("user followed", "follower_id", followerID, "followee_id", followeeID)
	}
	return &FollowResult{
		FolloweeID:       followeeID,
		Following:        true,
		AlreadyFollowing: !created,
	}, nil
}

// Unfollow removes the edge. It reports whether there was one.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	removed, err := s.follows.DeleteFollow(ctx, followerID, followeeID)
	if err != nil {
		return false, translate(err, "delete follow")
	}
	return removed, nil
}

// Followers lists who follows userID, oldest follow first.
func (s *FollowService) Followers(ctx context.Context, userID string) (*FollowList, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "get user")
	}
	users, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, translate(err, "list followers")
	}
	return &FollowList{Users: publicUsers(users), Count: len(users)}, nil
}

// Following lists who userID follows, oldest follow first.
func (s *FollowService) Following(ctx context.Context, userID string) (*FollowList, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, translate(err, "get user")
	}
	users, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, translate(err, "list following")
	}
	return &FollowList{Users: publicUsers(users), Count: len(users)}, nil
}

// IsFollowing reports whether a follows b.
func (s *FollowService) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, a, b)
	if err != nil {
		return false, translate(err, "check follow")
	}
	return ok, nil
}

// FollowerCount counts userID's live followers.
func (s *FollowService) FollowerCount(ctx context.Context, userID string) (int, error) {
	n, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return 0, translate(err, "count followers")
	}
	return n, nil
}

// FollowingCount counts the live users userID follows.
func (s *FollowService) FollowingCount(ctx context.Context, userID string) (int, error) {
	n, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return 0, translate(err, "count following")
	}
	return n, nil
}
