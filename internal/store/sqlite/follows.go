package sqlite

import (
	"context"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
)

// CreateFollow inserts the edge, doing nothing if it already exists.
func (s *Store) CreateFollow(ctx context.Context, follow *domain.Follow) (bool, error) {
	createdAt := follow.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		follow.FollowerID, follow.FolloweeID, formatTime(createdAt))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteFollow removes the edge if present.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsFollowing reports whether followerID follows followeeID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID).Scan(&n)
	return n > 0, err
}

// ListFolloweeIDs returns the IDs userID follows, oldest follow first.
// Deleted users are included; callers resolve identities separately.
func (s *Store) ListFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT followee_id FROM follows
		WHERE follower_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListFollowers returns live users following userID, ordered by follow time.
func (s *Store) ListFollowers(ctx context.Context, userID string) ([]*domain.User, error) {
	return s.listFollowUsers(ctx, `
		SELECT `+prefixed("u.", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ? AND u.deleted_at IS NULL
		ORDER BY f.created_at ASC, f.rowid ASC`, userID)
}

// ListFollowing returns live users userID follows, ordered by follow time.
func (s *Store) ListFollowing(ctx context.Context, userID string) ([]*domain.User, error) {
	return s.listFollowUsers(ctx, `
		SELECT `+prefixed("u.", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ? AND u.deleted_at IS NULL
		ORDER BY f.created_at ASC, f.rowid ASC`, userID)
}

func (s *Store) listFollowUsers(ctx context.Context, query, userID string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// CountFollowers counts live users following userID.
func (s *Store) CountFollowers(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ? AND u.deleted_at IS NULL`, userID).Scan(&n)
	return n, err
}

// CountFollowing counts live users userID follows.
func (s *Store) CountFollowing(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM follows f JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ? AND u.deleted_at IS NULL`, userID).Scan(&n)
	return n, err
}
