package board

import (
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const (
	fieldPriority = "priority"
	fieldStatus   = "status"
)

// ValidSortFields returns the accepted --sort values.
func ValidSortFields() []string {
	return []string{"created", "updated", fieldPriority, fieldStatus, "due", "title", "duration", "scheduled"}
}

// Sort sorts tasks in place by field. Priority sorts High first, status in
// board order; missing due dates, durations and schedules sort last.
func Sort(tasks []*task.Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b *task.Task, field string) bool {
	switch field {
	case fieldPriority:
		return a.Priority.Weight() > b.Priority.Weight()
	case fieldStatus:
		return a.Status.Index() < b.Status.Index()
	case "updated":
		return a.UpdatedAt.After(b.UpdatedAt)
	case "due":
		return dueBefore(a, b)
	case "title":
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case "duration":
		return compareDuration(a, b)
	case "scheduled":
		return compareScheduled(a, b)
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

func compareDuration(a, b *task.Task) bool {
	switch {
	case a.EstimatedDuration == nil:
		return false
	case b.EstimatedDuration == nil:
		return true
	default:
		return *a.EstimatedDuration < *b.EstimatedDuration
	}
}

func compareScheduled(a, b *task.Task) bool {
	switch {
	case a.ScheduledDate == nil:
		return false
	case b.ScheduledDate == nil:
		return true
	default:
		return a.ScheduledDate.Before(b.ScheduledDate.Time)
	}
}
