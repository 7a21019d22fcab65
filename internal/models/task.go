package models

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// Terminal reports whether the status excludes a task from scoring and
// active-child counts.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskBlocked, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is a locally cached task. ParentID is nil for root tasks.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Status           TaskStatus `json:"status"`
	Priority         int        `json:"priority"`
	ParentID         *string    `json:"parentId"`
	Position         int        `json:"position"`
	DueDate          *int64     `json:"dueDate"`
	EstimatedMinutes *int       `json:"estimatedMinutes"`
	CreatedAt        int64      `json:"createdAt"`
	UpdatedAt        int64      `json:"updatedAt"`
	SyncStatus       SyncStatus `json:"syncStatus"`
}

// TaskNode is a task enriched with its subtree for tree views.
type TaskNode struct {
	Task
	CompletionRate float64    `json:"completionRate"`
	Children       []TaskNode `json:"children"`
}

// TaskTreeView is the aggregate returned by tree queries.
type TaskTreeView struct {
	Roots          []TaskNode `json:"roots"`
	TotalTasks     int        `json:"totalTasks"`
	CompletedTasks int        `json:"completedTasks"`
	OverdueTasks   int        `json:"overdueTasks"`
}
