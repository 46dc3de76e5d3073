// Package service implements the application use cases on top of the store
// contracts. Services own authorization checks and input validation; the API
// layer only translates HTTP into service calls.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/streakboard/streakboard-server/internal/color"
	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/store"
	"github.com/streakboard/streakboard-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// Clock returns the current time.
type Clock func() time.Time

func clockOrNow(now Clock) Clock {
	if now == nil {
		return time.Now
	}
	return now
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return logger.Discard()
	}
	return l
}

// publicUser converts a user into the shape other users may see.
func publicUser(u *domain.User) domain.PublicUser {
	return domain.PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		DisplayName: u.DisplayName(),
		AvatarColor: color.ForUser(u.ID),
		StreakCount: u.StreakCount,
		CreatedAt:   u.CreatedAt,
	}
}

func publicUsers(users []*domain.User) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}
	return out
}

// translate turns store sentinels into domain errors. Anything else is
// wrapped with op and surfaces as an internal error.
func translate(err error, op string) error {
	var se *store.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch se.Code {
	case http.StatusNotFound:
		return domainerrors.NotFound(se.Message).WithCause(err)
	case http.StatusConflict:
		return domainerrors.AlreadyExists(se.Message).WithCause(err)
	case http.StatusBadRequest:
		return domainerrors.Validation(se.Message).WithCause(err)
	case http.StatusUnauthorized:
		return domainerrors.Unauthorized(se.Message).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
