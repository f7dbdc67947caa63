package board

import (
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Stats are the headline counts shown on the dashboard.
type Stats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	HighPriority int `json:"high_priority"` // High and not completed
}

// ComputeStats counts tasks by status. Pending counts the pending status
// only, not in_progress.
func ComputeStats(tasks []*task.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusPending:
			s.Pending++
		case task.StatusInProgress:
			s.InProgress++
		case task.StatusCompleted:
			s.Completed++
		}
		if t.Priority == task.PriorityHigh && t.Status != task.StatusCompleted {
			s.HighPriority++
		}
	}
	return s
}
