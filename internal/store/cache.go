// Package store is the in-memory mirror of the server's task and tag
// collections. Task mutations merge the server's response back into the
// mirror without a refetch; tag state is kept fresh by full refetches
// (create) or a local cascade (delete).
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/jtoledano/organizer/internal/api"
	"github.com/jtoledano/organizer/internal/logger"
	"github.com/jtoledano/organizer/internal/models"
)

// Message recorded when a task load hits a missing session
const errNotSignedIn = "not signed in, please log in"

// API is the slice of the client the cache uses
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ToggleComplete(ctx context.Context, id int64, completed bool) (*models.Task, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// Cache mirrors the server collections. The version counter increments on
// every successful change and keys projection memoization.
type Cache struct {
	client API

	mu      sync.RWMutex
	tasks   []models.Task
	tags    []models.Tag
	version uint64
	lastErr string
}

// New creates an empty cache backed by client
func New(client API) *Cache {
	return &Cache{client: client}
}

// FetchTasks replaces the task collection with the server's current list.
// Failures are absorbed into the error field; stale tasks stay visible.
func (c *Cache) FetchTasks(ctx context.Context) {
	c.clearError()

	tasks, err := c.client.ListTasks(ctx)
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			c.setError(errNotSignedIn)
		} else {
			c.setError(err.Error())
		}
		return
	}

	c.mu.Lock()
	c.tasks = tasks
	c.version++
	c.mu.Unlock()
}

// FetchTags replaces the tag collection. Tag loading is best-effort: a
// missing session is not an error.
func (c *Cache) FetchTags(ctx context.Context) {
	tags, err := c.client.ListTags(ctx)
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			return
		}
		c.setError(err.Error())
		return
	}

	c.mu.Lock()
	c.tags = tags
	c.version++
	c.mu.Unlock()
}

// CreateTask posts a new task and appends the server's copy to the end of
// the collection. Tags are refetched because a task update may have
// introduced a new tag.
func (c *Cache) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	c.clearError()

	task, err := c.client.CreateTask(ctx, draft)
	if err != nil {
		c.setError(err.Error())
		return nil, err
	}

	c.mu.Lock()
	c.removeTaskLocked(task.ID)
	c.tasks = append(c.tasks, *task)
	c.version++
	c.mu.Unlock()

	c.FetchTags(ctx)
	return task, nil
}

// UpdateTask applies a partial update and swaps the server's copy into the
// matching slot, leaving every other entry's position untouched.
func (c *Cache) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	c.clearError()

	task, err := c.client.UpdateTask(ctx, id, patch)
	if err != nil {
		c.setError(err.Error())
		return nil, err
	}

	c.replaceTask(*task)
	c.FetchTags(ctx)
	return task, nil
}

// ToggleComplete flips only the completed flag. No tag refetch: the PATCH
// route cannot touch tag associations.
func (c *Cache) ToggleComplete(ctx context.Context, id int64, completed bool) (*models.Task, error) {
	c.clearError()

	task, err := c.client.ToggleComplete(ctx, id, completed)
	if err != nil {
		c.setError(err.Error())
		return nil, err
	}

	c.replaceTask(*task)
	return task, nil
}

// DeleteTask deletes on the server, then drops the local entry. Tag
// associations are cleaned up server-side, so no refetch.
func (c *Cache) DeleteTask(ctx context.Context, id int64) error {
	c.clearError()

	if err := c.client.DeleteTask(ctx, id); err != nil {
		c.setError(err.Error())
		return err
	}

	c.mu.Lock()
	c.removeTaskLocked(id)
	c.version++
	c.mu.Unlock()
	return nil
}

// CreateTag creates a tag and refreshes the full tag list (the freshness
// policy for tags is refetch, not merge).
func (c *Cache) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	c.clearError()

	tag, err := c.client.CreateTag(ctx, name)
	if err != nil {
		c.setError(err.Error())
		return nil, err
	}

	c.FetchTags(ctx)
	return tag, nil
}

// DeleteTag deletes the tag on the server, then removes it from the tag
// collection and from every task's tag set in the same step, so no task can
// reference a deleted tag.
func (c *Cache) DeleteTag(ctx context.Context, id int64) error {
	c.clearError()

	if err := c.client.DeleteTag(ctx, id); err != nil {
		c.setError(err.Error())
		return err
	}

	c.mu.Lock()
	kept := c.tags[:0]
	for _, tag := range c.tags {
		if tag.ID != id {
			kept = append(kept, tag)
		}
	}
	c.tags = kept

	for i := range c.tasks {
		if !c.tasks[i].HasTag(id) {
			continue
		}
		tags := make([]models.Tag, 0, len(c.tasks[i].Tags)-1)
		for _, tag := range c.tasks[i].Tags {
			if tag.ID != id {
				tags = append(tags, tag)
			}
		}
		c.tasks[i].Tags = tags
	}
	c.version++
	c.mu.Unlock()
	return nil
}

// replaceTask swaps the entry with the same id; an unknown id is a stale
// response and is logged and dropped.
func (c *Cache) replaceTask(task models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.tasks {
		if c.tasks[i].ID == task.ID {
			c.tasks[i] = task
			c.version++
			return
		}
	}
	logger.Debug("update for task missing from cache", "id", task.ID)
}

// removeTaskLocked drops the entry with the given id. Caller holds the lock.
func (c *Cache) removeTaskLocked(id int64) {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

func (c *Cache) clearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Cache) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

// Tasks returns a copy of the task collection in server order
func (c *Cache) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Tags returns a copy of the tag collection
func (c *Cache) Tags() []models.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Version returns the change counter. It increments on every successful
// fetch or mutation, so equal versions mean identical contents.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// LastError returns the most recent recorded failure, or ""
func (c *Cache) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
