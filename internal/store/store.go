// Package store defines the persistence contracts used by services.
//
// Implementations live in subpackages: store/sqlite holds users, tasks and
// the follow graph; store/kv holds refresh-token sessions on badger.
package store

import (
	"context"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
)

// UserStore persists accounts. Lookups never return soft-deleted users.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUsersByIDs returns the live users among ids keyed by id. Missing or
	// deleted ids are simply absent.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	UpdateUserStreak(ctx context.Context, id string, count int, at time.Time) error
	DeleteUser(ctx context.Context, id string, at time.Time) error
}

// TaskStore persists tasks and answers the aggregates streaks and
// leaderboards are built from.
type TaskStore interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasksByOwner(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error)
	CountTasksByStatus(ctx context.Context, ownerID string) (map[domain.TaskStatus]int, error)

	// ListTaskSnapshots returns every task of ownerID in its snapshot form.
	// Timestamps that cannot be parsed come back as pointers to the zero time.
	ListTaskSnapshots(ctx context.Context, ownerID string) ([]domain.TaskSnapshot, error)

	// CountCompletedByOwner counts completed tasks per owner with completion
	// time in [since, until). Owners with no such tasks are absent.
	CountCompletedByOwner(ctx context.Context, ownerIDs []string, since, until time.Time) (map[string]int, error)
}

// FollowStore persists the directed follow graph.
type FollowStore interface {
	// CreateFollow adds the edge. created is false when it already existed.
	CreateFollow(ctx context.Context, follow *domain.Follow) (created bool, err error)
	// DeleteFollow removes the edge. removed is false when there was none.
	DeleteFollow(ctx context.Context, followerID, followeeID string) (removed bool, err error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)

	// ListFolloweeIDs returns who userID follows, oldest follow first.
	ListFolloweeIDs(ctx context.Context, userID string) ([]string, error)
	// ListFollowers and ListFollowing return live users ordered by follow time.
	ListFollowers(ctx context.Context, userID string) ([]*domain.User, error)
	ListFollowing(ctx context.Context, userID string) ([]*domain.User, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// SearchIndexer keeps the user search index in sync with account changes.
type SearchIndexer interface {
	IndexUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexUser is a no-op.
func (NoopSearchIndexer) IndexUser(context.Context, *domain.User) error { return nil }

// DeleteUser is a no-op.
func (NoopSearchIndexer) DeleteUser(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
