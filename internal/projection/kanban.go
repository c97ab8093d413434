// Package projection derives the per-view groupings from the task mirror.
// Everything here is a pure function of its inputs; Projector adds
// memoization keyed on the cache version counter.
package projection

import (
	"sort"

	"github.com/jtoledano/organizer/internal/models"
)

// Board is the Kanban grouping: one column per workflow status. Tasks with
// an unrecognized status appear in no column.
type Board struct {
	Pending    []models.Task
	InProgress []models.Task
	Completed  []models.Task
}

// Column returns the column for a status, or nil for unknown statuses
func (b Board) Column(s models.Status) []models.Task {
	switch s {
	case models.StatusPending:
		return b.Pending
	case models.StatusInProgress:
		return b.InProgress
	case models.StatusCompleted:
		return b.Completed
	}
	return nil
}

// Kanban partitions tasks into the three status columns. Each column is
// ordered by ascending due date, with the creation time standing in for
// tasks that have none.
func Kanban(tasks []models.Task) Board {
	var b Board
	for _, t := range tasks {
		switch t.Status {
		case models.StatusPending:
			b.Pending = append(b.Pending, t)
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case models.StatusCompleted:
			b.Completed = append(b.Completed, t)
		}
	}

	sortByDate(b.Pending)
	sortByDate(b.InProgress)
	sortByDate(b.Completed)
	return b
}

func sortByDate(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].SortDate().Before(tasks[j].SortDate())
	})
}
