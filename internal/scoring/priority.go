// Package scoring implements the deterministic analysis algorithms: task
// priority, habit streaks, failure patterns, and cognitive-bias detection.
// Everything here is a pure function over entity snapshots; no I/O.
package scoring

import (
	"math"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

const dayMillis = 24 * 60 * 60 * 1000

// PriorityFactors are the weighted components of a task's score, each in [0,1].
type PriorityFactors struct {
	Urgency      float64 `json:"urgency"`
	Importance   float64 `json:"importance"`
	Effort       float64 `json:"effort"`
	Dependencies float64 `json:"dependencies"`
	Age          float64 `json:"age"`
}

// PriorityScore is the computed priority for one task. Never persisted as
// authoritative; always recomputed from a snapshot.
type PriorityScore struct {
	Total    int             `json:"total"`
	Factors  PriorityFactors `json:"factors"`
	Computed time.Time       `json:"computed"`
}

// CalculatePriority scores a task snapshot. activeChildren is the count of
// non-terminal direct children; activeBlockers is the count of non-terminal
// tasks declaring this task as parent (its downstream blockers).
func CalculatePriority(task models.Task, activeChildren, activeBlockers int, now time.Time) PriorityScore {
	factors := PriorityFactors{
		Urgency:      urgencyFactor(task.DueDate, now),
		Importance:   importanceFactor(activeBlockers),
		Effort:       effortFactor(task.EstimatedMinutes),
		Dependencies: dependencyFactor(activeChildren),
		Age:          ageFactor(task.CreatedAt, now),
	}

	total := factors.Urgency*0.35 +
		factors.Importance*0.25 +
		factors.Effort*0.15 +
		factors.Dependencies*0.15 +
		factors.Age*0.10

	score := int(math.Round(total * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return PriorityScore{Total: score, Factors: factors, Computed: now}
}

func urgencyFactor(dueDate *int64, now time.Time) float64 {
	if dueDate == nil {
		return 0.3
	}
	daysUntilDue := float64(*dueDate-now.UnixMilli()) / dayMillis
	switch {
	case daysUntilDue < 0:
		return 1.0 // overdue
	case daysUntilDue < 1:
		return 0.95
	case daysUntilDue < 3:
		return 0.85
	case daysUntilDue < 7:
		return 0.7
	case daysUntilDue < 30:
		return 0.5
	default:
		return 0.3
	}
}

func effortFactor(estimatedMinutes *int) float64 {
	if estimatedMinutes == nil {
		return 0.5
	}
	switch m := *estimatedMinutes; {
	case m <= 30:
		return 1.0
	case m <= 60:
		return 0.8
	case m <= 120:
		return 0.6
	case m <= 240:
		return 0.4
	default:
		return 0.2
	}
}

func importanceFactor(activeBlockers int) float64 {
	switch {
	case activeBlockers == 0:
		return 0.5
	case activeBlockers <= 2:
		return 0.7
	case activeBlockers <= 5:
		return 0.85
	default:
		return 1.0
	}
}

func dependencyFactor(activeChildren int) float64 {
	switch {
	case activeChildren == 0:
		return 0.3
	case activeChildren <= 3:
		return 0.6
	case activeChildren <= 7:
		return 0.8
	default:
		return 1.0
	}
}

func ageFactor(createdAt int64, now time.Time) float64 {
	daysOld := float64(now.UnixMilli()-createdAt) / dayMillis
	switch {
	case daysOld < 1:
		return 0.1
	case daysOld < 7:
		return 0.3
	case daysOld < 30:
		return 0.5
	case daysOld < 90:
		return 0.7
	default:
		return 0.9
	}
}
