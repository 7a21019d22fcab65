package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// PatternType tags a detected failure pattern.
type PatternType string

const (
	PatternDayOfWeek    PatternType = "day_of_week"
	PatternTimeOfDay    PatternType = "time_of_day"
	PatternAfterSuccess PatternType = "after_success"
	PatternAfterFailure PatternType = "after_failure"
)

// FailurePattern describes a recurring miss pattern in a habit's history.
type FailurePattern struct {
	Type        PatternType `json:"type"`
	Description string      `json:"description"`
	Occurrences int         `json:"occurrences"`
	Confidence  float64     `json:"confidence"`
}

// minPatternEntries is the minimum history (two weeks of entries) required
// before any pattern is reported.
const minPatternEntries = 14

// AnalyzeHabit detects failure patterns in a habit's entry history. Fewer than
// two weeks of entries yields an empty result, not an error. Results are
// sorted descending by confidence.
func AnalyzeHabit(entries []models.HabitEntry) []FailurePattern {
	if len(entries) < minPatternEntries {
		return nil
	}

	sorted := make([]models.HabitEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var patterns []FailurePattern
	if p := detectDayOfWeek(sorted); p != nil {
		patterns = append(patterns, *p)
	}
	if p := detectAfterSuccess(sorted); p != nil {
		patterns = append(patterns, *p)
	}
	if p := detectAfterFailure(sorted); p != nil {
		patterns = append(patterns, *p)
	}

	sort.SliceStable(patterns, func(i, j int) bool { return patterns[i].Confidence > patterns[j].Confidence })
	return patterns
}

func detectDayOfWeek(entries []models.HabitEntry) *FailurePattern {
	type stat struct{ total, failures int }
	var days [7]stat

	for _, e := range entries {
		wd := time.UnixMilli(e.Date).In(time.Local).Weekday()
		days[wd].total++
		if !e.Completed {
			days[wd].failures++
		}
	}

	worstDay := time.Sunday
	worstRate := 0.0
	for wd, s := range days {
		if s.total < 2 {
			continue // not enough samples for this weekday
		}
		rate := float64(s.failures) / float64(s.total)
		if rate > worstRate {
			worstRate = rate
			worstDay = time.Weekday(wd)
		}
	}

	if worstRate < 0.6 {
		return nil
	}
	return &FailurePattern{
		Type:        PatternDayOfWeek,
		Description: fmt.Sprintf("You tend to miss this habit on %ss", worstDay),
		Occurrences: days[worstDay].failures,
		Confidence:  min(worstRate, 0.95),
	}
}

func detectAfterSuccess(entries []models.HabitEntry) *FailurePattern {
	failures := 0
	total := 0
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Completed {
			total++
			if !entries[i].Completed {
				failures++
			}
		}
	}

	if total < 5 {
		return nil
	}
	rate := float64(failures) / float64(total)
	if rate < 0.4 {
		return nil
	}
	return &FailurePattern{
		Type:        PatternAfterSuccess,
		Description: "You often skip this habit right after completing it successfully",
		Occurrences: failures,
		Confidence:  min(rate, 0.9),
	}
}

func detectAfterFailure(entries []models.HabitEntry) *FailurePattern {
	cascades := 0
	run := 0
	for _, e := range entries {
		if !e.Completed {
			run++
			if run >= 3 {
				cascades++
			}
		} else {
			run = 0
		}
	}

	if cascades < 2 {
		return nil
	}
	return &FailurePattern{
		Type:        PatternAfterFailure,
		Description: "Missing once tends to lead to multiple consecutive misses",
		Occurrences: cascades,
		Confidence:  min(0.7, float64(cascades)/(float64(len(entries))/30)),
	}
}
