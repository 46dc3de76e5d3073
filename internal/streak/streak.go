package streak

import (
	"slices"
	"time"

	"github.com/streakboard/streakboard-server/internal/domain"
)

// Result is a user's streak at a reference time.
type Result struct {
	Current int `json:"current"`
	Best    int `json:"best"`

	// Substituted counts completed tasks that had no completion time and were
	// bucketed by their update time or due date instead.
	Substituted int `json:"-"`
	// Skipped counts completed tasks with no usable timestamp.
	Skipped int `json:"-"`
}

// Days is a set of distinct calendar days.
type Days map[Day]struct{}

// Has reports whether d is in the set.
func (s Days) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in ascending order.
func (s Days) Sorted() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// source identifies which timestamp a completion day was derived from.
type source int

const (
	sourceNone source = iota
	sourceCompletedAt
	sourceFallback
	sourceDueDate
	sourceMalformed
)

// completionTime picks completedAt, then updatedAt, then dueDate.
// A present but zero timestamp is unparseable data and disqualifies the record.
func completionTime(s domain.TaskSnapshot) (time.Time, source) {
	if s.Status != domain.TaskStatusCompleted {
		return time.Time{}, sourceNone
	}
	for i, ts := range []*time.Time{s.CompletedAt, s.UpdatedAt, s.DueDate} {
		if ts == nil {
			continue
		}
		if ts.IsZero() {
			return time.Time{}, sourceMalformed
		}
		switch i {
		case 0:
			return *ts, sourceCompletedAt
		case 1:
			return *ts, sourceFallback
		}
		return *ts, sourceDueDate
	}
	return time.Time{}, sourceMalformed
}

// collect buckets completed tasks into days and counts data-quality events.
func collect(tasks []domain.TaskSnapshot, loc *time.Location) (days Days, substituted, skipped int) {
	days = make(Days)
	for _, t := range tasks {
		ts, src := completionTime(t)
		switch src {
		case sourceNone:
			continue
		case sourceMalformed:
			skipped++
			continue
		case sourceFallback, sourceDueDate:
			substituted++
		}
		days[completionDay(ts, src, loc)] = struct{}{}
	}
	return days, substituted, skipped
}

// isCivilDate reports whether t is a date-only value, stored as midnight UTC.
// Such a date names the same calendar day in every location.
func isCivilDate(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

// completionDay buckets ts in loc, except that a date-only due date keeps
// its calendar day.
func completionDay(ts time.Time, src source, loc *time.Location) Day {
	if src == sourceDueDate && isCivilDate(ts) {
		return DayOf(ts, time.UTC)
	}
	return DayOf(ts, loc)
}

// CompletedDays returns the distinct days on which at least one task was completed.
func CompletedDays(tasks []domain.TaskSnapshot, loc *time.Location) Days {
	days, _, _ := collect(tasks, loc)
	return days
}

// Compute returns the current and best streaks for tasks as seen at now.
// Days are bucketed in now's location. Current is the run of consecutive
// days ending today, zero if nothing was completed today.
func Compute(tasks []domain.TaskSnapshot, now time.Time) Result {
	loc := now.Location()
	days, substituted, skipped := collect(tasks, loc)

	res := Result{
		Best:        longestRun(days.Sorted()),
		Current:     runEndingAt(days, DayOf(now, loc)),
		Substituted: substituted,
		Skipped:     skipped,
	}
	return res
}

// longestRun returns the longest run of consecutive days in sorted.
func longestRun(sorted []Day) int {
	if len(sorted) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1].AddDays(1) {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

// runEndingAt counts consecutive days in set ending at day.
// Bounded by len(set).
func runEndingAt(set Days, day Day) int {
	n := 0
	for n < len(set) && set.Has(day.AddDays(-n)) {
		n++
	}
	return n
}

// CompletedOn counts tasks completed on day, using the same timestamp
// fallback as Compute.
func CompletedOn(tasks []domain.TaskSnapshot, day Day, loc *time.Location) int {
	n := 0
	for _, t := range tasks {
		ts, src := completionTime(t)
		if src == sourceNone || src == sourceMalformed {
			continue
		}
		if completionDay(ts, src, loc) == day {
			n++
		}
	}
	return n
}

// Week returns the seven days of the week containing now, starting on weekStart.
func Week(days Days, now time.Time, weekStart time.Weekday) []domain.StreakDay {
	today := DayOf(now, now.Location())
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	first := today.AddDays(-offset)

	week := make([]domain.StreakDay, 7)
	for i := range week {
		d := first.AddDays(i)
		week[i] = domain.StreakDay{
			Date:      d.String(),
			Completed: days.Has(d),
			IsToday:   d == today,
			IsFuture:  d > today,
		}
	}
	return week
}
