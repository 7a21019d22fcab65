package models

// Habit is a locally cached habit definition.
type Habit struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Frequency     string     `json:"frequency"`
	TargetCount   int        `json:"targetCount"`
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	UpdatedAt     int64      `json:"updatedAt"`
	SyncStatus    SyncStatus `json:"syncStatus"`
}

// HabitEntry is one logged day for a habit. Date is the entry day in
// milliseconds since epoch.
type HabitEntry struct {
	ID         string     `json:"id"`
	HabitID    string     `json:"habitId"`
	Date       int64      `json:"date"`
	Completed  bool       `json:"completed"`
	Count      int        `json:"count"`
	UpdatedAt  int64      `json:"updatedAt"`
	SyncStatus SyncStatus `json:"syncStatus"`
}
