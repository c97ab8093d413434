package projection

import (
	"sort"
	"time"

	"github.com/jtoledano/organizer/internal/models"
)

// Day is one calendar-date bucket of the weekly planner
type Day struct {
	Date  time.Time // midnight, local time
	Label string    // "Today", "Tomorrow", or "Monday, Jan 2"
	Tasks []models.Task
}

// Week buckets the incomplete tasks due in [today, today+7) by calendar
// date, ignoring time of day for the window check. Days come back in
// ascending date order; tasks within a day in ascending due timestamp.
func Week(tasks []models.Task, now time.Time) []Day {
	today := midnight(now)
	end := today.AddDate(0, 0, 7)

	buckets := make(map[time.Time][]models.Task)
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		day := midnight(t.DueDate.Time)
		if day.Before(today) || !day.Before(end) {
			continue
		}
		buckets[day] = append(buckets[day], t)
	}

	days := make([]Day, 0, len(buckets))
	for date, grouped := range buckets {
		sort.SliceStable(grouped, func(i, j int) bool {
			return grouped[i].DueDate.Before(grouped[j].DueDate.Time)
		})
		days = append(days, Day{
			Date:  date,
			Label: dayLabel(date, today),
			Tasks: grouped,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

func dayLabel(date, today time.Time) string {
	switch {
	case date.Equal(today):
		return "Today"
	case date.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return date.Format("Monday, Jan 2")
	}
}

func midnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}
