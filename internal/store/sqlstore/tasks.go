package sqlstore

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const (
	insertTaskSQL = `INSERT INTO tasks (` + taskColumns + `) VALUES (
	:id, :title, :description, :priority, :status, :due_date, :estimated_duration,
	:scheduled_date, :scheduled_start_time, :completed_at, :created_at, :updated_at)`

	updateTaskSQL = `UPDATE tasks SET
	title = :title, description = :description, priority = :priority, status = :status,
	due_date = :due_date, estimated_duration = :estimated_duration,
	scheduled_date = :scheduled_date, scheduled_start_time = :scheduled_start_time,
	completed_at = :completed_at, updated_at = :updated_at
	WHERE id = :id`
)

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, "SELECT "+taskColumns+" FROM tasks ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, store.Wrap(store.OpListTasks, "", errors.Wrap(err, "selecting tasks"))
	}
	tasks := make([]*task.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, store.Wrap(store.OpListTasks, "", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) InsertTask(ctx context.Context, f task.Fields) (*task.Task, error) {
	if err := f.Validate(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	row := rowFromTask(f.Build(uuid.NewString(), s.stamp()))
	if _, err := s.db.NamedExecContext(ctx, insertTaskSQL, row); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", errors.Wrap(err, "inserting task"))
	}
	t, err := row.toTask()
	if err != nil {
		return nil, store.Wrap(store.OpInsertTask, row.ID, err)
	}
	return t, nil
}

// UpdateTask reads the row, applies p and writes every column back inside
// one transaction. On PostgreSQL the row is locked for the duration.
func (s *Store) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}

	var updated *task.Task
	err := s.withTx(ctx, func(q querier) error {
		var cur taskRow
		query := q.Rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ?" + s.forUpdate())
		if err := q.GetContext(ctx, &cur, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.NotFound(store.OpUpdateTask, id)
			}
			return errors.Wrap(err, "selecting task")
		}
		t, err := cur.toTask()
		if err != nil {
			return err
		}
		if p.IfUpdatedAt != nil && !normalize(*p.IfUpdatedAt).Equal(t.UpdatedAt) {
			return store.Conflict(store.OpUpdateTask, id)
		}
		p.Apply(t)
		t.UpdatedAt = s.stamp()

		next := rowFromTask(t)
		if _, err := q.NamedExecContext(ctx, updateTaskSQL, next); err != nil {
			return errors.Wrap(err, "updating task")
		}
		updated, err = next.toTask()
		return err
	})
	if err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	return updated, nil
}

// DeleteTask removes the task. Edges go with it through ON DELETE CASCADE.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return store.Wrap(store.OpDeleteTask, id, errors.Wrap(err, "deleting task"))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(store.OpDeleteTask, id)
	}
	return nil
}
