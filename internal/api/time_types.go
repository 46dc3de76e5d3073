package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/streakboard/streakboard-server/internal/streak"
)

// parseFlexTime parses a timestamp in any of these forms:
//   - RFC3339 string: "2024-01-15T10:30:00Z"
//   - calendar date: "2024-01-15", stored as the civil date (midnight UTC)
//   - epoch milliseconds: "1705314600000"
func parseFlexTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if d, err := streak.ParseDay(s); err == nil {
		return d.Midnight(time.UTC), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time string: %s", s)
}

// parseDueDate interprets an optional due_date field. Nil leaves the due
// date alone, an empty string clears it.
func parseDueDate(raw *string) (due *time.Time, clearDue bool, err error) {
	if raw == nil {
		return nil, false, nil
	}
	if strings.TrimSpace(*raw) == "" {
		return nil, true, nil
	}
	t, err := parseFlexTime(*raw)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}
