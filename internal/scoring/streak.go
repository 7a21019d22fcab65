package scoring

import (
	"sort"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// StreakData is the streak summary derived from a habit's completed entries.
type StreakData struct {
	Current           int        `json:"current"`
	Longest           int        `json:"longest"`
	LastCompletedDate *time.Time `json:"lastCompletedDate"`
	IsActiveToday     bool       `json:"isActiveToday"`
}

// CalculateStreak derives streak data from a habit's entries. Only completed
// entries count; dates are normalized to local-day granularity before any
// comparison. Zero completed entries is a valid input, not an error.
func CalculateStreak(entries []models.HabitEntry, now time.Time) StreakData {
	loc := now.Location()

	var days []time.Time
	for _, e := range entries {
		if e.Completed {
			days = append(days, dayOf(e.Date, loc))
		}
	}
	if len(days) == 0 {
		return StreakData{}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := dayStart(now)
	last := days[0]
	active := last.Equal(today)

	// Current streak: walk from the most recent entry, accepting same-day or
	// exactly-one-day-earlier dates, starting the pointer at today.
	current := 0
	pointer := today
	for _, d := range days {
		if d.Equal(pointer) || d.Equal(pointer.AddDate(0, 0, -1)) {
			current++
			pointer = d
		} else {
			break
		}
	}

	// Longest streak: walk oldest to newest; same-day repeats are a no-op,
	// any other gap resets the running length.
	longest := 0
	run := 0
	var prev time.Time
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		switch {
		case prev.IsZero() || d.Equal(prev.AddDate(0, 0, 1)):
			run++
			if run > longest {
				longest = run
			}
		case !d.Equal(prev):
			run = 1
		}
		prev = d
	}

	return StreakData{
		Current:           current,
		Longest:           longest,
		LastCompletedDate: &last,
		IsActiveToday:     active,
	}
}

// dayOf normalizes an epoch-milliseconds timestamp to local midnight.
func dayOf(ms int64, loc *time.Location) time.Time {
	return dayStart(time.UnixMilli(ms).In(loc))
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
