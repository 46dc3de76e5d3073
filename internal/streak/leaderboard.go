package streak

import (
	"slices"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
)

// Row is a ranked followee.
type Row struct {
	Rank        int
	UserID      string
	DisplayName string
	Username    string
	Points      int
}

// Window returns the half-open lookback interval [now-days, now).
func Window(now time.Time, days int) (since, until time.Time) {
	if days <= 0 {
		days = domain.DefaultLeaderboardWindowDays
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour), now
}

// Rank orders followees by points, highest first, and keeps the top limit.
//
// counts holds completed-task counts per followee; a missing entry is zero.
// Followees without an entry in identities are dropped. Ties keep the order
// of followees. Rank is the 1-based position after truncation.
func Rank(followees []string, counts map[string]int, identities map[string]domain.Identity, limit int) []Row {
	if limit <= 0 {
		limit = domain.DefaultLeaderboardLimit
	}

	rows := make([]Row, 0, len(followees))
	seen := make(map[string]struct{}, len(followees))
	for _, id := range followees {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		ident, ok := identities[id]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			UserID:      id,
			DisplayName: ident.DisplayName(),
			Username:    ident.Username,
			Points:      counts[id],
		})
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return b.Points - a.Points
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
