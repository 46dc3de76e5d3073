package streak

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/streakboard/streakboard-server/internal/domain"
)

func at(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func completed(ts *time.Time) domain.TaskSnapshot {
	return domain.TaskSnapshot{Status: domain.TaskStatusCompleted, CompletedAt: ts}
}

func TestCompute_Empty(t *testing.T) {
	res := Compute(nil, time.Now())
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 0, res.Best)
}

func TestCompute_Scenarios(t *testing.T) {
	today := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		tasks       []domain.TaskSnapshot
		wantCurrent int
		wantBest    int
	}{
		{
			name: "three consecutive days ending today",
			tasks: []domain.TaskSnapshot{
				completed(at(2024, 1, 1, 9)),
				completed(at(2024, 1, 2, 9)),
				completed(at(2024, 1, 3, 9)),
			},
			wantCurrent: 3,
			wantBest:    3,
		},
		{
			name: "gap yesterday",
			tasks: []domain.TaskSnapshot{
				completed(at(2024, 1, 1, 9)),
				completed(at(2024, 1, 3, 9)),
			},
			wantCurrent: 1,
			wantBest:    1,
		},
		{
			name: "nothing today",
			tasks: []domain.TaskSnapshot{
				completed(at(2023, 12, 30, 9)),
				completed(at(2023, 12, 31, 9)),
				completed(at(2024, 1, 1, 9)),
				completed(at(2024, 1, 2, 9)),
			},
			wantCurrent: 0,
			wantBest:    4,
		},
		{
			name: "same day counted once",
			tasks: []domain.TaskSnapshot{
				completed(at(2024, 1, 3, 1)),
				completed(at(2024, 1, 3, 8)),
				completed(at(2024, 1, 3, 17)),
			},
			wantCurrent: 1,
			wantBest:    1,
		},
		{
			name: "pending tasks ignored",
			tasks: []domain.TaskSnapshot{
				{Status: domain.TaskStatusPending, CompletedAt: at(2024, 1, 2, 9)},
				completed(at(2024, 1, 3, 9)),
			},
			wantCurrent: 1,
			wantBest:    1,
		},
		{
			name: "best run in the past",
			tasks: []domain.TaskSnapshot{
				completed(at(2023, 11, 1, 9)),
				completed(at(2023, 11, 2, 9)),
				completed(at(2023, 11, 3, 9)),
				completed(at(2023, 11, 4, 9)),
				completed(at(2024, 1, 2, 9)),
				completed(at(2024, 1, 3, 9)),
			},
			wantCurrent: 2,
			wantBest:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.tasks, today)
			assert.Equal(t, tt.wantCurrent, res.Current, "current")
			assert.Equal(t, tt.wantBest, res.Best, "best")
		})
	}
}

func TestCompute_ConsecutiveDayInvariant(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)
	d2 := d0.AddDate(0, 0, 2)

	all := Compute([]domain.TaskSnapshot{completed(&d0), completed(&d1), completed(&d2)}, now)
	assert.Equal(t, 3, all.Best)

	gap := Compute([]domain.TaskSnapshot{completed(&d0), completed(&d2)}, now)
	assert.Equal(t, 1, gap.Best)
}

func TestCompute_FallbackChain(t *testing.T) {
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)

	tasks := []domain.TaskSnapshot{
		// updatedAt stands in for completedAt.
		{Status: domain.TaskStatusCompleted, UpdatedAt: at(2024, 1, 2, 10)},
		// dueDate is the last resort.
		{Status: domain.TaskStatusCompleted, DueDate: at(2024, 1, 3, 0)},
		// completedAt wins over the others.
		{Status: domain.TaskStatusCompleted, CompletedAt: at(2024, 1, 1, 8), UpdatedAt: at(2023, 6, 1, 8)},
		// No timestamp at all: excluded.
		{Status: domain.TaskStatusCompleted},
	}

	res := Compute(tasks, now)
	assert.Equal(t, 3, res.Current)
	assert.Equal(t, 3, res.Best)
	assert.Equal(t, 2, res.Substituted)
	assert.Equal(t, 1, res.Skipped)
}

func TestCompute_DateOnlyDueDateKeepsCalendarDay(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, west)
	today := DayOf(now, west)

	dateOnly := []domain.TaskSnapshot{
		{Status: domain.TaskStatusCompleted, DueDate: at(2024, 1, 3, 0)},
	}
	res := Compute(dateOnly, now)
	assert.Equal(t, 1, res.Current, "a date-only due date names the same day everywhere")
	assert.Equal(t, 1, CompletedOn(dateOnly, today, west))

	timed := []domain.TaskSnapshot{
		{Status: domain.TaskStatusCompleted, DueDate: at(2024, 1, 3, 2)},
	}
	res = Compute(timed, now)
	assert.Equal(t, 0, res.Current, "02:00Z is still the 2nd five hours west")
	assert.Equal(t, 1, res.Best)
	assert.Equal(t, 1, CompletedOn(timed, today.AddDays(-1), west))
}

func TestCompute_MalformedTimestampSkipped(t *testing.T) {
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	var zero time.Time

	tasks := []domain.TaskSnapshot{
		{Status: domain.TaskStatusCompleted, CompletedAt: &zero, UpdatedAt: at(2024, 1, 2, 9)},
		completed(at(2024, 1, 3, 9)),
	}

	res := Compute(tasks, now)
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 1, res.Best)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Substituted)
}

func TestCompute_BucketsInNowLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 16:00 UTC on Jan 2 is 01:00 on Jan 3 in Tokyo.
	tasks := []domain.TaskSnapshot{completed(at(2024, 1, 2, 16))}

	utcNow := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, Compute(tasks, utcNow).Current)
	assert.Equal(t, 1, Compute(tasks, utcNow.In(tokyo)).Current)
}

func TestCompute_Idempotent(t *testing.T) {
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	tasks := []domain.TaskSnapshot{
		completed(at(2024, 1, 1, 9)),
		{Status: domain.TaskStatusCompleted, UpdatedAt: at(2024, 1, 3, 9)},
	}

	assert.Equal(t, Compute(tasks, now), Compute(tasks, now))
}

func TestCompute_CurrentNeverExceedsBest(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		var tasks []domain.TaskSnapshot
		n := rng.Intn(30)
		for j := 0; j < n; j++ {
			ts := now.AddDate(0, 0, -rng.Intn(20))
			tasks = append(tasks, completed(&ts))
		}

		res := Compute(tasks, now)
		assert.LessOrEqual(t, res.Current, res.Best)

		if CompletedDays(tasks, time.UTC).Has(DayOf(now, time.UTC)) {
			assert.GreaterOrEqual(t, res.Current, 1)
		}
	}
}

func TestCompletedOn(t *testing.T) {
	today := DayOf(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.UTC)
	tasks := []domain.TaskSnapshot{
		completed(at(2024, 1, 3, 1)),
		completed(at(2024, 1, 3, 22)),
		completed(at(2024, 1, 2, 22)),
		{Status: domain.TaskStatusCompleted, UpdatedAt: at(2024, 1, 3, 5)},
		{Status: domain.TaskStatusPending, UpdatedAt: at(2024, 1, 3, 5)},
	}

	assert.Equal(t, 3, CompletedOn(tasks, today, time.UTC))
}

func TestWeek(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	days := CompletedDays([]domain.TaskSnapshot{
		completed(at(2023, 12, 31, 9)),
		completed(at(2024, 1, 2, 9)),
		completed(at(2024, 1, 3, 9)),
	}, time.UTC)

	week := Week(days, now, time.Sunday)

	assert.Len(t, week, 7)
	assert.Equal(t, "2023-12-31", week[0].Date)
	assert.Equal(t, "2024-01-06", week[6].Date)
	assert.True(t, week[0].Completed)
	assert.False(t, week[1].Completed)
	assert.True(t, week[2].Completed)
	assert.True(t, week[3].Completed)
	assert.True(t, week[3].IsToday)
	assert.False(t, week[3].IsFuture)
	assert.True(t, week[4].IsFuture)
}

func TestWeek_MondayStart(t *testing.T) {
	// Sunday.
	now := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)

	week := Week(Days{}, now, time.Monday)

	assert.Equal(t, "2024-01-01", week[0].Date)
	assert.True(t, week[6].IsToday)
}
