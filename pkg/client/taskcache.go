package client

import "sync"

// TaskCache is an in-memory mirror of the server-side task list. It
// performs no network calls of its own: page logic fetches through the
// Client and pushes results in with SetTasks, then applies the same
// mutations locally that it sent to the server. The search query field
// coordinates a search box with a list view.
type TaskCache struct {
	mu          sync.Mutex
	tasks       []Task
	searchQuery string
}

// NewTaskCache returns an empty cache.
func NewTaskCache() *TaskCache {
	return &TaskCache{}
}

// Tasks returns a copy of the current list.
func (c *TaskCache) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// SetTasks replaces the list wholesale.
func (c *TaskCache) SetTasks(tasks []Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = make([]Task, len(tasks))
	copy(c.tasks, tasks)
}

// Add prepends a task, keeping newest-first ordering.
func (c *TaskCache) Add(t Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]Task{t}, c.tasks...)
}

// Update replaces the task with a matching ID in place, preserving
// order. Unknown IDs are ignored.
func (c *TaskCache) Update(t Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == t.ID {
			c.tasks[i] = t
			return
		}
	}
}

// Delete removes the task with the given ID. Unknown IDs are ignored.
func (c *TaskCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

// SetSearchQuery records the active search text.
func (c *TaskCache) SetSearchQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchQuery = q
}

// SearchQuery returns the active search text.
func (c *TaskCache) SearchQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchQuery
}
