package domain

import "time"

// Follow is a directed edge in the social graph: Follower sees Followee's activity.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
