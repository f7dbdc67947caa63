package board

import (
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// StatusSummary holds metrics for a single status column.
type StatusSummary struct {
	Status  task.Status `json:"status"`
	Count   int         `json:"count"`
	Blocked int         `json:"blocked"`
	Overdue int         `json:"overdue"`
	Minutes int         `json:"minutes"`
}

// PriorityCount holds a count for a priority level.
type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

// Overview is the aggregate board overview.
type Overview struct {
	BoardName  string          `json:"board_name"`
	Stats      Stats           `json:"stats"`
	Statuses   []StatusSummary `json:"statuses"`
	Priorities []PriorityCount `json:"priorities"`
	Blocked    int             `json:"blocked"`
	Overdue    int             `json:"overdue"`
	Next       *task.Task      `json:"next,omitempty"`
}

// Summary computes the overview of a snapshot. A task is overdue when it is
// not completed and its due date is before now.
func Summary(name string, tasks []*task.Task, edges []task.Edge, now time.Time) Overview {
	blocked := BlockedIDs(tasks, edges)
	statuses := statusSummaries(tasks, blocked, &now)

	prio := make(map[task.Priority]int, len(task.Priorities))
	for _, t := range tasks {
		prio[t.Priority]++
	}
	priorities := make([]PriorityCount, 0, len(task.Priorities))
	for _, p := range task.Priorities {
		priorities = append(priorities, PriorityCount{Priority: p, Count: prio[p]})
	}

	o := Overview{
		BoardName:  name,
		Stats:      ComputeStats(tasks),
		Statuses:   statuses,
		Priorities: priorities,
		Blocked:    len(blocked),
		Next:       RecommendNext(tasks),
	}
	for _, s := range statuses {
		o.Overdue += s.Overdue
	}
	return o
}

// Overdue reports whether t is open and past its due date.
func Overdue(t *task.Task, now time.Time) bool {
	return !t.Done() && t.DueDate != nil && t.DueDate.Before(now)
}

func statusSummaries(tasks []*task.Task, blocked map[string]bool, now *time.Time) []StatusSummary {
	byStatus := make(map[task.Status]*StatusSummary, len(task.Statuses))
	out := make([]StatusSummary, len(task.Statuses))
	for i, s := range task.Statuses {
		out[i].Status = s
		byStatus[s] = &out[i]
	}
	for _, t := range tasks {
		ss, ok := byStatus[t.Status]
		if !ok {
			continue
		}
		ss.Count++
		ss.Minutes += t.Minutes()
		if blocked[t.ID] {
			ss.Blocked++
		}
		if now != nil && Overdue(t, *now) {
			ss.Overdue++
		}
	}
	return out
}
