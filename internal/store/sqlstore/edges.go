package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const edgeColumns = "id, task_id, depends_on_task_id, created_at"

func (s *Store) ListEdges(ctx context.Context) ([]task.Edge, error) {
	var rows []edgeRow
	err := s.db.SelectContext(ctx, &rows, "SELECT "+edgeColumns+" FROM task_dependencies ORDER BY created_at, id")
	if err != nil {
		return nil, store.Wrap(store.OpListEdges, "", errors.Wrap(err, "selecting dependencies"))
	}
	edges := make([]task.Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, r.toEdge())
	}
	return edges, nil
}

func (s *Store) InsertEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error) {
	if taskID == dependsOnID {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, taskID, task.ValidateSelfReference(taskID))
	}

	row := edgeRow{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		DependsOnTaskID: dependsOnID,
		CreatedAt:       s.stamp(),
	}
	err := s.withTx(ctx, func(q querier) error {
		var found []string
		query := q.Rebind("SELECT id FROM tasks WHERE id IN (?, ?)")
		if err := q.SelectContext(ctx, &found, query, taskID, dependsOnID); err != nil {
			return errors.Wrap(err, "checking endpoints")
		}
		for _, id := range []string{taskID, dependsOnID} {
			if !contains(found, id) {
				return store.NotFound(store.OpInsertEdge, id)
			}
		}

		var n int
		query = q.Rebind("SELECT COUNT(*) FROM task_dependencies WHERE task_id = ? AND depends_on_task_id = ?")
		if err := q.GetContext(ctx, &n, query, taskID, dependsOnID); err != nil {
			return errors.Wrap(err, "checking for duplicate")
		}
		if n > 0 {
			return task.ValidateDuplicateEdge(taskID, dependsOnID)
		}

		_, err := q.NamedExecContext(ctx,
			"INSERT INTO task_dependencies ("+edgeColumns+") VALUES (:id, :task_id, :depends_on_task_id, :created_at)",
			row)
		return errors.Wrap(err, "inserting dependency")
	})
	if err != nil {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", err)
	}
	return row.toEdge(), nil
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM task_dependencies WHERE id = ?"), id)
	if err != nil {
		return store.Wrap(store.OpDeleteEdge, id, errors.Wrap(err, "deleting dependency"))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(store.OpDeleteEdge, id)
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
