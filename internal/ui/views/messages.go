package views

import (
	"time"

	"github.com/jtoledano/organizer/internal/models"
)

// LoggedIn signals a successful login or registration
type LoggedIn struct {
	User models.User
}

// LoggedOut signals that the session ended and the login view should show
type LoggedOut struct{}

// DataChanged signals that a cache operation finished (successfully or not);
// views re-read the cache and its error field.
type DataChanged struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// dueLabel formats a task's due date for list rows
func dueLabel(t models.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	due := t.DueDate.Time
	switch {
	case sameDay(due, now):
		return "today " + due.Format("15:04")
	case sameDay(due, now.AddDate(0, 0, 1)):
		return "tomorrow"
	default:
		return due.Format("Jan 2")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func overdue(t models.Task, now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now) && !sameDay(t.DueDate.Time, now)
}

// priorityMark is the single-character badge shown before a task title
func priorityMark(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "!"
	case models.PriorityMedium:
		return "·"
	case models.PriorityLow:
		return " "
	}
	return " "
}
