package appstate

import (
	"sort"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// PutTask inserts or replaces a task, keeping the children index consistent
// when the parent pointer moves.
func (c *Container) PutTask(t models.Task) {
	c.mu.Lock()
	c.putTaskLocked(t)
	c.mu.Unlock()
}

func (c *Container) putTaskLocked(t models.Task) {
	if prev, ok := c.tasks[t.ID]; ok && prev.ParentID != nil {
		if t.ParentID == nil || *prev.ParentID != *t.ParentID {
			c.children[*prev.ParentID] = removeID(c.children[*prev.ParentID], t.ID)
		}
	}
	if t.ParentID != nil && !containsID(c.children[*t.ParentID], t.ID) {
		c.children[*t.ParentID] = append(c.children[*t.ParentID], t.ID)
	}
	c.tasks[t.ID] = t
}

// Task returns a task by id.
func (c *Container) Task(id string) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tasks[id]
	return t, ok
}

// Tasks returns every cached task ordered by position then creation time.
func (c *Container) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t)
	}
	sortTasks(out)
	return out
}

// DeleteTask removes a task. Its children are detached and become roots; they
// are never cascade-deleted.
func (c *Container) DeleteTask(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tasks[id]
	if !ok {
		return
	}
	if t.ParentID != nil {
		c.children[*t.ParentID] = removeID(c.children[*t.ParentID], id)
	}
	for _, childID := range c.children[id] {
		child := c.tasks[childID]
		child.ParentID = nil
		c.tasks[childID] = child
	}
	delete(c.children, id)
	delete(c.tasks, id)
}

// ChildTasks returns the direct children of a task ordered by position then
// creation time.
func (c *Container) ChildTasks(id string) []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.children[id]
	out := make([]models.Task, 0, len(ids))
	for _, childID := range ids {
		out = append(out, c.tasks[childID])
	}
	sortTasks(out)
	return out
}

// ActiveChildren counts the non-terminal direct children of a task. The
// priority calculation uses it for both the dependency and importance factors.
func (c *Container) ActiveChildren(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, childID := range c.children[id] {
		if !c.tasks[childID].Status.Terminal() {
			n++
		}
	}
	return n
}

func (c *Container) renameTaskLocked(oldID, newID string) bool {
	t, ok := c.tasks[oldID]
	if !ok {
		return false
	}
	delete(c.tasks, oldID)
	t.ID = newID
	t.SyncStatus = models.StatusSynced
	c.tasks[newID] = t

	if t.ParentID != nil {
		replaceID(c.children[*t.ParentID], oldID, newID)
	}
	if ids, ok := c.children[oldID]; ok {
		delete(c.children, oldID)
		c.children[newID] = ids
		for _, childID := range ids {
			child := c.tasks[childID]
			id := newID
			child.ParentID = &id
			c.tasks[childID] = child
		}
	}
	return true
}

// TaskTree builds the hierarchical view: roots ordered by position then
// creation time, each node carrying its completed-children fraction.
func (c *Container) TaskTree(now time.Time) models.TaskTreeView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nowMs := now.UnixMilli()
	view := models.TaskTreeView{TotalTasks: len(c.tasks)}

	var roots []models.Task
	for _, t := range c.tasks {
		if t.Status == models.TaskCompleted {
			view.CompletedTasks++
		}
		if t.DueDate != nil && *t.DueDate < nowMs && !t.Status.Terminal() {
			view.OverdueTasks++
		}
		if t.ParentID == nil {
			roots = append(roots, t)
		}
	}
	sortTasks(roots)

	view.Roots = make([]models.TaskNode, len(roots))
	for i, t := range roots {
		view.Roots[i] = c.buildNodeLocked(t)
	}
	return view
}

func (c *Container) buildNodeLocked(t models.Task) models.TaskNode {
	node := models.TaskNode{Task: t}

	childIDs := c.children[t.ID]
	if len(childIDs) == 0 {
		if t.Status == models.TaskCompleted {
			node.CompletionRate = 1
		}
		return node
	}

	kids := make([]models.Task, 0, len(childIDs))
	for _, id := range childIDs {
		kids = append(kids, c.tasks[id])
	}
	sortTasks(kids)

	completed := 0
	node.Children = make([]models.TaskNode, len(kids))
	for i, child := range kids {
		if child.Status == models.TaskCompleted {
			completed++
		}
		node.Children[i] = c.buildNodeLocked(child)
	}
	node.CompletionRate = float64(completed) / float64(len(kids))
	return node
}

func sortTasks(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt < tasks[j].CreatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
