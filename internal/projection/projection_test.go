package projection

import (
	"reflect"
	"testing"
	"time"

	"github.com/jtoledano/organizer/internal/models"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("parsing %q: %v", value, err)
	}
	return parsed
}

func due(t *testing.T, value string) *models.Time {
	t.Helper()
	tm := models.NewTime(at(t, value))
	return &tm
}

func TestKanbanPartitionsByStatus(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Status: models.StatusPending},
		{ID: 2, Status: models.StatusInProgress},
		{ID: 3, Status: models.StatusCompleted},
		{ID: 4, Status: models.StatusPending},
		{ID: 5, Status: "archived"},
	}

	b := Kanban(tasks)

	if len(b.Pending) != 2 || len(b.InProgress) != 1 || len(b.Completed) != 1 {
		t.Fatalf("bad partition: %d/%d/%d", len(b.Pending), len(b.InProgress), len(b.Completed))
	}
	total := len(b.Pending) + len(b.InProgress) + len(b.Completed)
	if total != 4 {
		t.Fatalf("unknown status should appear in no column, got %d placed", total)
	}
}

func TestKanbanOrdersByDueDateWithCreationFallback(t *testing.T) {
	// The dateless task was created after the other one's due date, so its
	// creation time sorts it second.
	tasks := []models.Task{
		{
			ID:        1,
			Status:    models.StatusPending,
			CreatedAt: models.NewTime(at(t, "2026-09-05 10:00")),
		},
		{
			ID:        2,
			Status:    models.StatusPending,
			DueDate:   due(t, "2026-09-01 09:00"),
			CreatedAt: models.NewTime(at(t, "2026-08-20 10:00")),
		},
	}

	b := Kanban(tasks)

	if b.Pending[0].ID != 2 || b.Pending[1].ID != 1 {
		t.Fatalf("expected order [2 1], got [%d %d]", b.Pending[0].ID, b.Pending[1].ID)
	}
}

func TestEisenhowerExcludesCompleted(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Quadrant: models.QuadrantDo},
		{ID: 2, Quadrant: models.QuadrantDo, Completed: true},
	}

	m := Eisenhower(tasks)

	if len(m.Do) != 1 || m.Do[0].ID != 1 {
		t.Fatalf("completed task leaked into the matrix: %v", m.Do)
	}
}

func TestEisenhowerUnknownQuadrantFallsToEliminate(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Quadrant: ""},
		{ID: 2, Quadrant: "no_such_bucket"},
		{ID: 3, Quadrant: models.QuadrantSchedule},
	}

	m := Eisenhower(tasks)

	if len(m.Eliminate) != 2 {
		t.Fatalf("expected 2 fallback tasks, got %d", len(m.Eliminate))
	}
	if len(m.Schedule) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(m.Schedule))
	}
}

func TestEisenhowerDatelessTasksSortLast(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Quadrant: models.QuadrantDo},
		{ID: 2, Quadrant: models.QuadrantDo, DueDate: due(t, "2026-09-03 12:00")},
		{ID: 3, Quadrant: models.QuadrantDo, DueDate: due(t, "2026-09-01 12:00")},
	}

	m := Eisenhower(tasks)

	got := []int64{m.Do[0].ID, m.Do[1].ID, m.Do[2].ID}
	want := []int64{3, 2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWeekWindowAndGrouping(t *testing.T) {
	now := at(t, "2026-08-31 16:45")

	tasks := []models.Task{
		{ID: 1, Title: "later today", DueDate: due(t, "2026-08-31 20:00")},
		{ID: 2, Title: "earlier today", DueDate: due(t, "2026-08-31 08:00")},
		{ID: 3, Title: "tomorrow", DueDate: due(t, "2026-09-01 09:00")},
		{ID: 4, Title: "last day in window", DueDate: due(t, "2026-09-06 23:59")},
		{ID: 5, Title: "one day too far", DueDate: due(t, "2026-09-07 00:00")},
		{ID: 6, Title: "yesterday", DueDate: due(t, "2026-08-30 10:00")},
		{ID: 7, Title: "done", DueDate: due(t, "2026-09-02 10:00"), Completed: true},
		{ID: 8, Title: "dateless"},
	}

	days := Week(tasks, now)

	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}

	if days[0].Label != "Today" {
		t.Fatalf("expected Today first, got %q", days[0].Label)
	}
	// A task due earlier today still counts: the window check ignores the
	// time of day.
	if len(days[0].Tasks) != 2 || days[0].Tasks[0].ID != 2 || days[0].Tasks[1].ID != 1 {
		t.Fatalf("today's bucket wrong: %v", days[0].Tasks)
	}

	if days[1].Label != "Tomorrow" || len(days[1].Tasks) != 1 {
		t.Fatalf("tomorrow's bucket wrong: %q %v", days[1].Label, days[1].Tasks)
	}

	if days[2].Label != "Sunday, Sep 6" {
		t.Fatalf("expected weekday label, got %q", days[2].Label)
	}
}

func TestWeekIsIdempotent(t *testing.T) {
	now := at(t, "2026-08-31 12:00")
	tasks := []models.Task{
		{ID: 1, DueDate: due(t, "2026-09-01 09:00")},
		{ID: 2, DueDate: due(t, "2026-09-01 14:00")},
		{ID: 3, DueDate: due(t, "2026-09-03 10:00")},
	}

	first := Week(tasks, now)
	second := Week(tasks, now)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated projection of the same input differs")
	}
}

func TestWeekEmptyInput(t *testing.T) {
	if days := Week(nil, time.Now()); len(days) != 0 {
		t.Fatalf("expected no days, got %d", len(days))
	}
}
