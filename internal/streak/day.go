// Package streak derives completion streaks and friends leaderboards from task snapshots.
//
// Everything in this package is pure: callers pass the reference time, the location
// and all data explicitly. No function here reads the clock or touches storage.
package streak

import "time"

const secondsPerDay = 24 * 60 * 60

// Day identifies a civil calendar day. The value is the number of days since
// 1970-01-01, so Days order naturally and subtract exactly.
type Day int64

// DayOf returns the calendar day that t falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DaysBetween returns the signed number of calendar days from a to b in loc.
// Positive when b is later. Both times are bucketed first, so DST shifts never
// produce fractional days.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	return int(DayOf(b, loc) - DayOf(a, loc))
}

// AddDays returns the day n days after d.
func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// Midnight returns the start of d in loc.
func (d Day) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	u := time.Unix(int64(d)*secondsPerDay, 0).UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week.
func (d Day) Weekday() time.Weekday {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC().Weekday()
}

// String formats d as YYYY-MM-DD.
func (d Day) String() string {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC().Format(time.DateOnly)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, err
	}
	return DayOf(t, time.UTC), nil
}
