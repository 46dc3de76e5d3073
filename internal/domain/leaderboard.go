package domain

import "time"

// Leaderboard defaults.
const (
	DefaultLeaderboardWindowDays = 7
	MaxLeaderboardWindowDays     = 365
	DefaultLeaderboardLimit      = 10
)

// LeaderboardEntry is a single ranked followee.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Points      int    `json:"points"`
	AvatarColor string `json:"avatar_color"`
}

// Leaderboard is a friends leaderboard for one follower.
type Leaderboard struct {
	Leaders    []LeaderboardEntry `json:"leaders"`
	WindowDays int                `json:"window_days"`
	Since      time.Time          `json:"since"`
	Until      time.Time          `json:"until"`
}

// StreakDay is one cell of the weekly streak calendar.
type StreakDay struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	IsToday   bool   `json:"is_today"`
	IsFuture  bool   `json:"is_future"`
}

// StreakSummary is the computed streak for a user at a point in time.
type StreakSummary struct {
	UserID         string      `json:"user_id"`
	Current        int         `json:"current"`
	Best           int         `json:"best"`
	CompletedToday int         `json:"completed_today"`
	Week           []StreakDay `json:"week"`
	Timezone       string      `json:"timezone"`
	ComputedAt     time.Time   `json:"computed_at"`
}
