package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/color"
	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/id"
	"github.com/streakboard/streakboard-server/internal/normalize"
	"github.com/streakboard/streakboard-server/internal/search"
	"github.com/streakboard/streakboard-server/internal/store"
)

// UserSearcher is the user search index as seen by UserService.
type UserSearcher interface {
	store.SearchIndexer
	Search(ctx context.Context, params search.Params) ([]search.Hit, error)
}

// UserService manages accounts and profiles.
type UserService struct {
	users    store.UserStore
	follows  store.FollowStore
	search   UserSearcher
	hasher   *auth.Hasher
	sessions *SessionService
	streaks  *StreakService
	logger   *slog.Logger
	now      Clock
}

// NewUserService creates a user service.
func NewUserService(
	users store.UserStore,
	follows store.FollowStore,
	searcher UserSearcher,
	hasher *auth.Hasher,
	sessions *SessionService,
	streaks *StreakService,
	logger *slog.Logger,
	now Clock,
) *UserService {
	return &UserService{
		users:    users,
		follows:  follows,
		search:   searcher,
		hasher:   hasher,
		sessions: sessions,
		streaks:  streaks,
		logger:   loggerOrDiscard(logger),
		now:      clockOrNow(now),
	}
}

// RegisterRequest contains the data for open registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// UpdateProfileRequest is a partial profile update. Nil fields are left alone.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,max=100"`
	Username *string `json:"username,omitempty" validate:"omitnil,username"`
}

// SearchRequest configures a user search.
type SearchRequest struct {
	Query     string `json:"q" validate:"max=100"`
	ExcludeID string `json:"-"`
	Limit     int    `json:"limit" validate:"gte=0,lte=50"`
}

// Register creates an account. Email and username must be unused,
// compared case-insensitively.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalize.Email(req.Email)
	req.Username = normalize.Username(req.Username)
	req.Name = normalize.Title(req.Name)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps(s.now())

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, translate(err, "create user")
	}

	if err := s.search.IndexUser(ctx, user); err != nil {
		s.logger.Warn("failed to index user", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalize.Email(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	return user, nil
}

// GetUser returns a live user.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

// GetProfile returns userID's profile as seen by viewerID. The email is
// only included when viewers look at themselves. completed_today is
// bucketed in loc.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID string, loc *time.Location) (*domain.Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, translate(err, "count followers")
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, translate(err, "count following")
	}
	completedToday, err := s.streaks.CompletedToday(ctx, userID, loc)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:          user.ID,
		Username:    user.Username,
		Name:        user.Name,
		DisplayName: user.DisplayName(),
		AvatarColor: color.ForUser(user.ID),
		Streak: domain.Streak{
			Count:     user.StreakCount,
			UpdatedAt: user.StreakUpdatedAt,
		},
		FollowerCount:  followers,
		FollowingCount: following,
		CompletedToday: completedToday,
		CreatedAt:      user.CreatedAt,
	}
	if viewerID == userID {
		profile.Email = user.Email
	}
	return profile, nil
}

// UpdateProfile changes the caller's own name or username.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if req.Name != nil {
		name := normalize.Title(*req.Name)
		req.Name = &name
	}
	if req.Username != nil {
		username := normalize.Username(*req.Username)
		req.Username = &username
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	user.Touch(s.now())

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, translate(err, "update user")
	}

	if err := s.search.IndexUser(ctx, user); err != nil {
		s.logger.Warn("failed to reindex user", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// UpdateStreak stores a client-computed streak count. Users can only
// update their own streak.
func (s *UserService) UpdateStreak(ctx context.Context, actorID, userID string, count int) (*domain.Streak, error) {
	if actorID != userID {
		return nil, domainerrors.Forbidden("you can only update your own streak")
	}
	if count < 0 {
		return nil, domainerrors.ValidationWithDetails("invalid count", map[string]string{
			"count": "must be 0 or greater",
		})
	}

	now := s.now()
	if err := s.users.UpdateUserStreak(ctx, userID, count, now); err != nil {
		return nil, translate(err, "update streak")
	}
	return &domain.Streak{Count: count, UpdatedAt: &now}, nil
}

// DeleteAccount soft-deletes the user, revokes every session and drops the
// user from search. Follow edges stay; deleted users are filtered out of
// every listing and leaderboard.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID, s.now()); err != nil {
		return translate(err, "delete user")
	}

	if err := s.sessions.DeleteAllUserSessions(ctx, userID); err != nil {
		s.logger.Error("failed to revoke sessions of deleted user", "user_id", userID, "error", err)
	}
	if err := s.search.DeleteUser(ctx, userID); err != nil {
		s.logger.Warn("failed to remove deleted user from search", "user_id", userID, "error", err)
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

// Search finds users by name, username or email, best match first.
func (s *UserService) Search(ctx context.Context, req SearchRequest) ([]domain.PublicUser, error) {
	req.Query = normalize.Title(req.Query)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.Query == "" {
		return []domain.PublicUser{}, nil
	}

	limit := req.Limit
	if limit == 0 {
		limit = search.DefaultLimit
	}

	hits, err := s.search.Search(ctx, search.Params{
		Query:     req.Query,
		ExcludeID: req.ExcludeID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	// The index can lag behind deletions; the store has the final say.
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "load search hits")
	}

	results := make([]domain.PublicUser, 0, len(hits))
	for _, h := range hits {
		if u, ok := users[h.ID]; ok {
			results = append(results, publicUser(u))
		}
	}
	return results, nil
}
