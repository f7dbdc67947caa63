// Package board derives views from a snapshot of tasks and dependency
// edges: filters, the recommended next task, statistics, blocked tasks and
// the daily schedule. Every function is pure and never fails; missing data
// yields empty results.
package board

import (
	"strings"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// StatusFilter selects tasks by lifecycle state.
type StatusFilter string

// Status filters. StatusOpen ("pending") matches both pending and
// in_progress tasks.
const (
	StatusAll       StatusFilter = "all"
	StatusOpen      StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

// PriorityAll disables priority filtering.
const PriorityAll = "all"

// PriorityFilter is PriorityAll or one of task.Priorities.
type PriorityFilter string

// ParseStatusFilter accepts "all", "pending", "open" and "completed".
// An empty string means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "pending", "open":
		return StatusOpen, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", task.ValidateStatus(task.Status(s))
}

// ParsePriorityFilter accepts "all" or a priority name in any case.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	if s == "" || strings.EqualFold(s, PriorityAll) {
		return PriorityAll, nil
	}
	p, err := task.ParsePriority(s)
	if err != nil {
		return "", err
	}
	return PriorityFilter(p), nil
}

func (f StatusFilter) match(s task.Status) bool {
	switch f {
	case StatusOpen:
		return s == task.StatusPending || s == task.StatusInProgress
	case StatusCompleted:
		return s == task.StatusCompleted
	default:
		return true
	}
}

func (f PriorityFilter) match(p task.Priority) bool {
	if f == "" || f == PriorityAll {
		return true
	}
	return task.Priority(f) == p
}

// FilterTasks returns the tasks matching both filters in input order.
func FilterTasks(tasks []*task.Task, status StatusFilter, priority PriorityFilter) []*task.Task {
	return Filter(tasks, FilterOptions{Status: status, Priority: priority})
}

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Status   StatusFilter
	Priority PriorityFilter
	Search   string // case-insensitive substring match on title and description
}

// Filter returns tasks matching all specified criteria, in input order.
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if !opts.Status.match(t.Status) || !opts.Priority.match(t.Priority) {
		return false
	}
	return opts.Search == "" || matchesSearch(t, opts.Search)
}

func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
