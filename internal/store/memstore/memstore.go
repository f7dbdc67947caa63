// Package memstore is an in-memory Store. It backs tests and the
// "memory" backend kind.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Store keeps tasks and edges in maps guarded by a mutex.
type Store struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
	edges map[string]task.Edge
	now   func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tasks: make(map[string]*task.Task),
		edges: make(map[string]task.Edge),
		now:   time.Now,
	}
}

// SetNow overrides the clock used for timestamps (for testing).
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = fn
}

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpListTasks, "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListEdges(ctx context.Context) ([]task.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpListEdges, "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertTask(ctx context.Context, f task.Fields) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	if err := f.Validate(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := f.Build(uuid.NewString(), s.now())
	s.tasks[t.ID] = t
	return t.Clone(), nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	if err := p.Validate(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[id]
	if !ok {
		return nil, store.NotFound(store.OpUpdateTask, id)
	}
	if p.IfUpdatedAt != nil && !p.IfUpdatedAt.Equal(cur.UpdatedAt) {
		return nil, store.Conflict(store.OpUpdateTask, id)
	}
	next := cur.Clone()
	p.Apply(next)
	next.UpdatedAt = s.now()
	s.tasks[id] = next
	return next.Clone(), nil
}

// DeleteTask removes the task and every edge touching it.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap(store.OpDeleteTask, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.NotFound(store.OpDeleteTask, id)
	}
	delete(s.tasks, id)
	for eid, e := range s.edges {
		if e.Touches(id) {
			delete(s.edges, eid)
		}
	}
	return nil
}

func (s *Store) InsertEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error) {
	if err := ctx.Err(); err != nil {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", err)
	}
	if taskID == dependsOnID {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, taskID, task.ValidateSelfReference(taskID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{taskID, dependsOnID} {
		if _, ok := s.tasks[id]; !ok {
			return task.Edge{}, store.NotFound(store.OpInsertEdge, id)
		}
	}
	for _, e := range s.edges {
		if e.TaskID == taskID && e.DependsOnTaskID == dependsOnID {
			return task.Edge{}, store.Wrap(store.OpInsertEdge, "", task.ValidateDuplicateEdge(taskID, dependsOnID))
		}
	}
	e := task.Edge{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		DependsOnTaskID: dependsOnID,
		CreatedAt:       s.now(),
	}
	s.edges[e.ID] = e
	return e, nil
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap(store.OpDeleteEdge, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[id]; !ok {
		return store.NotFound(store.OpDeleteEdge, id)
	}
	delete(s.edges, id)
	return nil
}
