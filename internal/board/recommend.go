package board

import (
	"sort"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// RecommendNext picks the pending task to work on next: highest priority
// first, then the earliest due date, with dated tasks ahead of undated
// ones. It returns nil when nothing is pending.
func RecommendNext(tasks []*task.Task) *task.Task {
	ranked := Ranked(tasks)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// Ranked returns the pending tasks in recommendation order. The input is
// not modified.
func Ranked(tasks []*task.Task) []*task.Task {
	var pending []*task.Task
	for _, t := range tasks {
		if t.Status == task.StatusPending {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if wa, wb := a.Priority.Weight(), b.Priority.Weight(); wa != wb {
			return wa > wb
		}
		return dueBefore(a, b)
	})
	return pending
}

// dueBefore orders by due date; a missing due date sorts last.
func dueBefore(a, b *task.Task) bool {
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}
