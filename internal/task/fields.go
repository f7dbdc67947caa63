package task

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
)

// Fields is the input for creating a task. The store assigns the id and
// the created/updated timestamps.
type Fields struct {
	Title              string      `json:"title"`
	Description        string      `json:"description,omitempty"`
	Priority           Priority    `json:"priority"`
	Status             Status      `json:"status"`
	DueDate            *time.Time  `json:"due_date,omitempty"`
	EstimatedDuration  *int        `json:"estimated_duration,omitempty"`
	ScheduledDate      *date.Date  `json:"scheduled_date,omitempty"`
	ScheduledStartTime *date.Clock `json:"scheduled_start_time,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
}

// WithDefaults fills an empty priority or status.
func (f Fields) WithDefaults(p Priority, s Status) Fields {
	if f.Priority == "" {
		f.Priority = p
	}
	if f.Status == "" {
		f.Status = s
	}
	return f
}

// Validate checks the title, enums and duration.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ValidateTitle()
	}
	if !f.Priority.Valid() {
		return ValidatePriority(f.Priority)
	}
	if !f.Status.Valid() {
		return ValidateStatus(f.Status)
	}
	if f.EstimatedDuration != nil && *f.EstimatedDuration < 0 {
		return ValidateDuration(*f.EstimatedDuration)
	}
	return nil
}

// Build materializes the fields into a task with the given id and timestamps.
func (f Fields) Build(id string, now time.Time) *Task {
	t := &Task{
		ID:                 id,
		Title:              f.Title,
		Description:        f.Description,
		Priority:           f.Priority,
		Status:             f.Status,
		DueDate:            f.DueDate,
		EstimatedDuration:  f.EstimatedDuration,
		ScheduledDate:      f.ScheduledDate,
		ScheduledStartTime: f.ScheduledStartTime,
		CompletedAt:        f.CompletedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return t.Clone()
}
