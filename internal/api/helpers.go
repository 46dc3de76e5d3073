package api

import (
	"strings"
	"time"

	"github.com/streakboard/streakboard-server/internal/color"
	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

// location resolves a tz query parameter, defaulting to the configured zone.
func (s *Server) location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return s.defaultLoc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid timezone", map[string]string{"tz": tz})
	}
	return loc, nil
}

// splitCSV splits a comma-separated query value, dropping blanks.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UserResponse is the signed-in user's own account.
type UserResponse struct {
	ID              string     `json:"id" doc:"User ID"`
	Email           string     `json:"email" doc:"User email"`
	Username        string     `json:"username" doc:"Unique handle"`
	Name            string     `json:"name" doc:"Full name"`
	DisplayName     string     `json:"display_name" doc:"Name, else username, else email"`
	AvatarColor     string     `json:"avatar_color" doc:"Deterministic avatar colour"`
	StreakCount     int        `json:"streak_count" doc:"Persisted streak count"`
	StreakUpdatedAt *time.Time `json:"streak_updated_at,omitempty" doc:"When the streak was last persisted"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       time.Time  `json:"updated_at" doc:"Last update timestamp"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		Name:            u.Name,
		DisplayName:     u.DisplayName(),
		AvatarColor:     color.ForUser(u.ID),
		StreakCount:     u.StreakCount,
		StreakUpdatedAt: u.StreakUpdatedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
