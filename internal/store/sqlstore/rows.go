package sqlstore

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const taskColumns = `id, title, description, priority, status, due_date, estimated_duration,
	scheduled_date, scheduled_start_time, completed_at, created_at, updated_at`

type taskRow struct {
	ID                 string         `db:"id"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	Priority           string         `db:"priority"`
	Status             string         `db:"status"`
	DueDate            sql.NullTime   `db:"due_date"`
	EstimatedDuration  sql.NullInt64  `db:"estimated_duration"`
	ScheduledDate      sql.NullString `db:"scheduled_date"`
	ScheduledStartTime sql.NullString `db:"scheduled_start_time"`
	CompletedAt        sql.NullTime   `db:"completed_at"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r taskRow) toTask() (*task.Task, error) {
	t := &task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		Status:      task.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate.Valid {
		v := r.DueDate.Time.UTC()
		t.DueDate = &v
	}
	if r.EstimatedDuration.Valid {
		v := int(r.EstimatedDuration.Int64)
		t.EstimatedDuration = &v
	}
	if r.ScheduledDate.Valid {
		d, err := date.Parse(r.ScheduledDate.String)
		if err != nil {
			return nil, errors.Wrapf(err, "task %s: scheduled_date", r.ID)
		}
		t.ScheduledDate = &d
	}
	if r.ScheduledStartTime.Valid {
		c, err := date.ParseClock(r.ScheduledStartTime.String)
		if err != nil {
			return nil, errors.Wrapf(err, "task %s: scheduled_start_time", r.ID)
		}
		t.ScheduledStartTime = &c
	}
	if r.CompletedAt.Valid {
		v := r.CompletedAt.Time.UTC()
		t.CompletedAt = &v
	}
	return t, nil
}

func rowFromTask(t *task.Task) taskRow {
	r := taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		r.DueDate = sql.NullTime{Time: normalize(*t.DueDate), Valid: true}
	}
	if t.EstimatedDuration != nil {
		r.EstimatedDuration = sql.NullInt64{Int64: int64(*t.EstimatedDuration), Valid: true}
	}
	if t.ScheduledDate != nil {
		r.ScheduledDate = sql.NullString{String: t.ScheduledDate.String(), Valid: true}
	}
	if t.ScheduledStartTime != nil {
		r.ScheduledStartTime = sql.NullString{String: t.ScheduledStartTime.String(), Valid: true}
	}
	if t.CompletedAt != nil {
		r.CompletedAt = sql.NullTime{Time: normalize(*t.CompletedAt), Valid: true}
	}
	return r
}

type edgeRow struct {
	ID              string    `db:"id"`
	TaskID          string    `db:"task_id"`
	DependsOnTaskID string    `db:"depends_on_task_id"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r edgeRow) toEdge() task.Edge {
	return task.Edge{
		ID:              r.ID,
		TaskID:          r.TaskID,
		DependsOnTaskID: r.DependsOnTaskID,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
