package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed-in user's profile, including email",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Changes the signed-in user's name or username",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me",
		Summary:     "Delete account",
		Description: "Deletes the signed-in user's account and revokes every session",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleDeleteCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Finds users by name, username or email with prefix and fuzzy matching",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleSearchUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user profile",
		Description: "Returns a user's public profile with follower counts",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetUser)
}

// === DTOs ===

// GetCurrentUserInput contains parameters for the current user's profile.
type GetCurrentUserInput struct {
	Timezone string `query:"tz" doc:"IANA timezone used for completed_today"`
}

// GetUserInput contains parameters for getting a user profile.
type GetUserInput struct {
	ID       string `path:"id" doc:"User ID"`
	Timezone string `query:"tz" doc:"IANA timezone used for completed_today"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// UpdateProfileRequest is the request body for a profile update.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" doc:"Full name"`
	Username *string `json:"username,omitempty" doc:"New unique handle"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// SearchUsersInput contains user search parameters.
type SearchUsersInput struct {
	Query       string `query:"q" maxLength:"100" doc:"Search text"`
	ExcludeSelf bool   `query:"exclude_self" doc:"Leave the signed-in user out of the results"`
	Limit       int    `query:"limit" doc:"Max results (default 10, max 50)"`
}

// UserListResponse is a list of public users.
type UserListResponse struct {
	Users []domain.PublicUser `json:"users" doc:"Matching users"`
	Count int                 `json:"count" doc:"Number of users returned"`
}

// UserListOutput wraps a user list for Huma.
type UserListOutput struct {
	Body UserListResponse
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, userID, userID, input.Timezone)
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, userID, input.ID, input.Timezone)
}

func (s *Server) profile(ctx context.Context, viewerID, userID, tz string) (*ProfileOutput, error) {
	loc, err := s.location(tz)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Users.GetProfile(ctx, viewerID, userID, loc)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Name:     input.Body.Name,
		Username: input.Body.Username,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleDeleteCurrentUser(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Users.DeleteAccount(ctx, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*UserListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.SearchRequest{Query: input.Query, Limit: input.Limit}
	if input.ExcludeSelf {
		req.ExcludeID = userID
	}

	users, err := s.services.Users.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return &UserListOutput{Body: UserListResponse{Users: users, Count: len(users)}}, nil
}
