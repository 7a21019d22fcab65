package scoring

import (
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// HabitStats summarizes a habit's completion history.
type HabitStats struct {
	TotalCompletions int     `json:"totalCompletions"`
	AveragePerWeek   float64 `json:"averagePerWeek"`
	CompletionRate   float64 `json:"completionRate"`
	LastSevenDays    int     `json:"lastSevenDays"`
	LastThirtyDays   int     `json:"lastThirtyDays"`
}

// CalculateStats derives completion statistics from a habit's entries.
func CalculateStats(entries []models.HabitEntry, now time.Time) HabitStats {
	if len(entries) == 0 {
		return HabitStats{}
	}

	nowMs := now.UnixMilli()
	oldest := entries[0].Date
	completions := 0
	last7 := 0
	last30 := 0
	for _, e := range entries {
		if e.Date < oldest {
			oldest = e.Date
		}
		if !e.Completed {
			continue
		}
		completions++
		if nowMs-e.Date <= 7*dayMillis {
			last7++
		}
		if nowMs-e.Date <= 30*dayMillis {
			last30++
		}
	}

	weeks := float64(nowMs-oldest) / (7 * dayMillis)
	if weeks < 1 {
		weeks = 1
	}

	return HabitStats{
		TotalCompletions: completions,
		AveragePerWeek:   float64(completions) / weeks,
		CompletionRate:   float64(completions) / float64(len(entries)),
		LastSevenDays:    last7,
		LastThirtyDays:   last30,
	}
}
