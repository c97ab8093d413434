package projection

import (
	"sort"

	"github.com/jtoledano/organizer/internal/models"
)

// Matrix is the Eisenhower grouping of incomplete tasks. Tasks with a
// missing or unrecognized quadrant land in Eliminate ("neither urgent nor
// important").
type Matrix struct {
	Do        []models.Task // urgent and important
	Schedule  []models.Task // important, not urgent
	Delegate  []models.Task // urgent, not important
	Eliminate []models.Task // neither
}

// Quadrant returns the bucket for q, treating unknown values as Eliminate
func (m Matrix) Quadrant(q models.Quadrant) []models.Task {
	switch q {
	case models.QuadrantDo:
		return m.Do
	case models.QuadrantSchedule:
		return m.Schedule
	case models.QuadrantDelegate:
		return m.Delegate
	}
	return m.Eliminate
}

// Eisenhower groups the incomplete tasks by quadrant. Within a quadrant,
// tasks are ordered by ascending due date; dateless tasks sort last.
func Eisenhower(tasks []models.Task) Matrix {
	var m Matrix
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		switch t.Quadrant {
		case models.QuadrantDo:
			m.Do = append(m.Do, t)
		case models.QuadrantSchedule:
			m.Schedule = append(m.Schedule, t)
		case models.QuadrantDelegate:
			m.Delegate = append(m.Delegate, t)
		default:
			m.Eliminate = append(m.Eliminate, t)
		}
	}

	sortDatelessLast(m.Do)
	sortDatelessLast(m.Schedule)
	sortDatelessLast(m.Delegate)
	sortDatelessLast(m.Eliminate)
	return m
}

func sortDatelessLast(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(b.Time)
		}
	})
}
