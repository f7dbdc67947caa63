// Package task defines tasks, dependency edges and the inputs used to create
// and update them.
package task

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
)

// Priority ranks how urgent a task is.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists all priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Weight returns 3 for High, 2 for Medium, 1 for Low and 0 otherwise.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3 //nolint:mnd // priority weight
	case PriorityMedium:
		return 2 //nolint:mnd // priority weight
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool { return p.Weight() > 0 }

// Status is the lifecycle state of a task.
type Status string

// Statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists all statuses in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Index returns the position of s in Statuses, or -1.
func (s Status) Index() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// Next returns the status after s. Completed stays completed.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// Prev returns the status before s. Pending stays pending.
func (s Status) Prev() Status {
	switch s {
	case StatusCompleted:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", ValidatePriority(Priority(s))
}

// ParseStatus accepts the canonical names plus "in-progress" and "in progress".
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Status(norm)
	if !st.Valid() {
		return "", ValidateStatus(Status(s))
	}
	return st, nil
}

// Task is a unit of work.
type Task struct {
	ID                 string      `json:"id" yaml:"id"`
	Title              string      `json:"title" yaml:"title"`
	Description        string      `json:"description,omitempty" yaml:"-"`
	Priority           Priority    `json:"priority" yaml:"priority"`
	Status             Status      `json:"status" yaml:"status"`
	DueDate            *time.Time  `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedDuration  *int        `json:"estimated_duration,omitempty" yaml:"estimated_duration,omitempty"`
	ScheduledDate      *date.Date  `json:"scheduled_date,omitempty" yaml:"scheduled_date,omitempty"`
	ScheduledStartTime *date.Clock `json:"scheduled_start_time,omitempty" yaml:"scheduled_start_time,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" yaml:"updated_at"`
}

// Minutes returns the estimated duration, or 0 when unset.
func (t *Task) Minutes() int {
	if t.EstimatedDuration == nil {
		return 0
	}
	return *t.EstimatedDuration
}

// Done reports whether the task is completed.
func (t *Task) Done() bool { return t.Status == StatusCompleted }

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.DueDate = clonePtr(t.DueDate)
	c.EstimatedDuration = clonePtr(t.EstimatedDuration)
	c.ScheduledDate = clonePtr(t.ScheduledDate)
	c.ScheduledStartTime = clonePtr(t.ScheduledStartTime)
	c.CompletedAt = clonePtr(t.CompletedAt)
	return &c
}

// Edge records that TaskID cannot start before DependsOnTaskID is completed.
type Edge struct {
	ID              string    `json:"id" yaml:"id"`
	TaskID          string    `json:"task_id" yaml:"task_id"`
	DependsOnTaskID string    `json:"depends_on_task_id" yaml:"depends_on_task_id"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Touches reports whether the edge references id at either end.
func (e Edge) Touches(id string) bool {
	return e.TaskID == id || e.DependsOnTaskID == id
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
