package models

import (
	"encoding/json"
	"time"
)

// Status is the workflow state of a task. It drives the Kanban columns.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority of a task. The server default is "normal" on old rows; anything
// outside the three known values is carried through untouched.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Quadrant is one of the four Eisenhower buckets. The wire values are the
// server's Spanish keys.
type Quadrant string

const (
	QuadrantDo        Quadrant = "urgente_importante"
	QuadrantSchedule  Quadrant = "importante_no_urgente"
	QuadrantDelegate  Quadrant = "urgente_no_importante"
	QuadrantEliminate Quadrant = "ni_urgente_ni_importante"
)

// Known reports whether q is one of the four defined quadrants.
func (q Quadrant) Known() bool {
	switch q {
	case QuadrantDo, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate:
		return true
	}
	return false
}

// User is the account info returned by the auth endpoints
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt Time   `json:"created_at"`
}

// Tag is a user-defined label attached to tasks
type Tag struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"user_id,omitempty"`
}

// Task is a single task as the server returns it
type Task struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"user_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     *Time    `json:"due_date"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Quadrant    Quadrant `json:"eisenhower_quadrant"`
	Completed   bool     `json:"completed"`
	CreatedAt   Time     `json:"created_at"`
	UpdatedAt   Time     `json:"updated_at"`
	Tags        []Tag    `json:"tags"`
}

// HasTag reports whether the task carries the given tag
func (t Task) HasTag(tagID int64) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}

// SortDate is the timestamp used for due-date ordering: the due date when
// set, otherwise the creation time.
func (t Task) SortDate() time.Time {
	if t.DueDate != nil {
		return t.DueDate.Time
	}
	return t.CreatedAt.Time
}

// TaskDraft is the body of a task create request
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     *Time    `json:"due_date,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Quadrant    Quadrant `json:"eisenhower_quadrant,omitempty"`
	Completed   bool     `json:"completed"`
	TagIDs      []int64  `json:"tag_ids,omitempty"`
}

// TaskPatch is a partial update. Nil fields are left out of the request so
// the server keeps the existing values. ClearDueDate sends an explicit null
// due_date, which the server treats as a removal.
type TaskPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	DueDate      *Time     `json:"due_date,omitempty"`
	Status       *Status   `json:"status,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Quadrant     *Quadrant `json:"eisenhower_quadrant,omitempty"`
	Completed    *bool     `json:"completed,omitempty"`
	TagIDs       []int64   `json:"tag_ids,omitempty"`
	ClearDueDate bool      `json:"-"`
}

// MarshalJSON splices an explicit null due_date into the body when the patch
// clears the date; omitempty alone cannot tell "unchanged" from "removed".
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	type patch TaskPatch
	encoded, err := json.Marshal(patch(p))
	if err != nil || !p.ClearDueDate {
		return encoded, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	fields["due_date"] = json.RawMessage("null")
	return json.Marshal(fields)
}

// StatusPatch builds the patch a Kanban move issues. Status is the single
// source of truth; completed is kept in lockstep with it.
func StatusPatch(s Status) TaskPatch {
	completed := s == StatusCompleted
	return TaskPatch{Status: &s, Completed: &completed}
}
