package scoring

import (
	"testing"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

func msPtr(v int64) *int64 { return &v }
func intPtr(v int) *int    { return &v }

func TestCalculatePriorityOverdueQuickTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:               "t1",
		DueDate:          msPtr(now.AddDate(0, 0, -1).UnixMilli()),
		EstimatedMinutes: intPtr(20),
		CreatedAt:        now.AddDate(0, 0, -40).UnixMilli(),
	}

	score := CalculatePriority(task, 0, 0, now)

	if score.Factors.Urgency != 1.0 {
		t.Errorf("urgency = %v, want 1.0", score.Factors.Urgency)
	}
	if score.Factors.Effort != 1.0 {
		t.Errorf("effort = %v, want 1.0", score.Factors.Effort)
	}
	if score.Factors.Importance != 0.5 {
		t.Errorf("importance = %v, want 0.5", score.Factors.Importance)
	}
	if score.Factors.Dependencies != 0.3 {
		t.Errorf("dependencies = %v, want 0.3", score.Factors.Dependencies)
	}
	if score.Factors.Age != 0.7 {
		t.Errorf("age = %v, want 0.7", score.Factors.Age)
	}
	if score.Total != 74 {
		t.Errorf("total = %d, want 74", score.Total)
	}
}

func TestUrgencySteps(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		due  *int64
		want float64
	}{
		{"no due date", nil, 0.3},
		{"overdue", msPtr(now.Add(-time.Hour).UnixMilli()), 1.0},
		{"due today", msPtr(now.Add(12 * time.Hour).UnixMilli()), 0.95},
		{"within 3 days", msPtr(now.Add(48 * time.Hour).UnixMilli()), 0.85},
		{"within a week", msPtr(now.AddDate(0, 0, 5).UnixMilli()), 0.7},
		{"within a month", msPtr(now.AddDate(0, 0, 20).UnixMilli()), 0.5},
		{"far future", msPtr(now.AddDate(0, 2, 0).UnixMilli()), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgencyFactor(tt.due, now); got != tt.want {
				t.Errorf("urgency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffortSteps(t *testing.T) {
	tests := []struct {
		minutes *int
		want    float64
	}{
		{nil, 0.5},
		{intPtr(15), 1.0},
		{intPtr(30), 1.0},
		{intPtr(45), 0.8},
		{intPtr(90), 0.6},
		{intPtr(200), 0.4},
		{intPtr(500), 0.2},
	}
	for _, tt := range tests {
		if got := effortFactor(tt.minutes); got != tt.want {
			t.Errorf("effortFactor(%v) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestImportanceAndDependencySteps(t *testing.T) {
	importance := map[int]float64{0: 0.5, 1: 0.7, 2: 0.7, 3: 0.85, 5: 0.85, 6: 1.0}
	for n, want := range importance {
		if got := importanceFactor(n); got != want {
			t.Errorf("importanceFactor(%d) = %v, want %v", n, got, want)
		}
	}
	dependencies := map[int]float64{0: 0.3, 1: 0.6, 3: 0.6, 4: 0.8, 7: 0.8, 8: 1.0}
	for n, want := range dependencies {
		if got := dependencyFactor(n); got != want {
			t.Errorf("dependencyFactor(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestTotalClamped(t *testing.T) {
	now := time.Now()
	task := models.Task{
		DueDate:          msPtr(now.AddDate(0, 0, -5).UnixMilli()),
		EstimatedMinutes: intPtr(10),
		CreatedAt:        now.AddDate(-1, 0, 0).UnixMilli(),
	}
	score := CalculatePriority(task, 10, 10, now)
	if score.Total < 0 || score.Total > 100 {
		t.Errorf("total %d outside [0,100]", score.Total)
	}
}
