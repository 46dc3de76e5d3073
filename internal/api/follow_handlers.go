package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/service"
)

func (s *Server) registerFollowRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "follow",
		Method:      http.MethodPost,
		Path:        "/api/v1/follows",
		Summary:     "Follow user",
		Description: "Follows a user. Following someone you already follow is not an error.",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollow",
		Method:      http.MethodDelete,
		Path:        "/api/v1/follows/{followeeId}",
		Summary:     "Unfollow user",
		Description: "Stops following a user. Unfollowing someone you do not follow is not an error.",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleUnfollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/followers",
		Summary:     "List followers",
		Description: "Lists the users following a user, oldest follow first",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/following",
		Summary:     "List following",
		Description: "Lists the users a user follows, oldest follow first",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleListFollowing)
}

// === DTOs ===

// FollowRequest is the request body for following a user.
type FollowRequest struct {
	FolloweeID string `json:"followee_id" doc:"User to follow"`
}

// FollowInput wraps the follow request for Huma.
type FollowInput struct {
	Body FollowRequest
}

// FollowOutput wraps a follow result for Huma.
type FollowOutput struct {
	Body *service.FollowResult
}

// UnfollowInput identifies the user to unfollow.
type UnfollowInput struct {
	FolloweeID string `path:"followeeId" doc:"User to unfollow"`
}

// UnfollowResponse reports the outcome of an unfollow.
type UnfollowResponse struct {
	FolloweeID string `json:"followee_id" doc:"User that was unfollowed"`
	Removed    bool   `json:"removed" doc:"False when there was no follow to remove"`
}

// UnfollowOutput wraps the unfollow response for Huma.
type UnfollowOutput struct {
	Body UnfollowResponse
}

// FollowListOutput wraps a follower or following list for Huma.
type FollowListOutput struct {
	Body *service.FollowList
}

// === Handlers ===

func (s *Server) handleFollow(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Follows.Follow(ctx, userID, input.Body.FolloweeID)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: result}, nil
}

func (s *Server) handleUnfollow(ctx context.Context, input *UnfollowInput) (*UnfollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := s.services.Follows.Unfollow(ctx, userID, input.FolloweeID)
	if err != nil {
		return nil, err
	}
	return &UnfollowOutput{Body: UnfollowResponse{FolloweeID: input.FolloweeID, Removed: removed}}, nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *UserIDInput) (*FollowListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	list, err := s.services.Follows.Followers(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FollowListOutput{Body: list}, nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *UserIDInput) (*FollowListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	list, err := s.services.Follows.Following(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FollowListOutput{Body: list}, nil
}
