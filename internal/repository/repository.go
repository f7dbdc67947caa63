// Package repository owns the in-memory snapshot of tasks and dependency
// edges and keeps it in step with a store.Store. Local state changes only
// after the store confirms a write; every outcome is reported to a
// notify.Notifier.
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Banner texts for notices.
const (
	MsgFetchTasksFailed = "Failed to fetch tasks"
	MsgFetchEdgesFailed = "Failed to fetch task dependencies"
	MsgCreated          = "Task created successfully"
	MsgCreateFailed     = "Failed to create task"
	MsgUpdated          = "Task updated successfully"
	MsgUpdateFailed     = "Failed to update task"
	MsgDeleted          = "Task deleted successfully"
	MsgDeleteFailed     = "Failed to delete task"
	MsgEdgeAdded        = "Dependency added successfully"
	MsgEdgeAddFailed    = "Failed to add dependency"
	MsgEdgeRemoved      = "Dependency removed successfully"
	MsgEdgeRemoveFailed = "Failed to remove dependency"
)

// Snapshot is a point-in-time copy of both collections. Tasks are newest
// first. Callers own the copy.
type Snapshot struct {
	Tasks []*task.Task `json:"tasks"`
	Edges []task.Edge  `json:"edges"`
}

// Task returns the task with id.
func (s Snapshot) Task(id string) (*task.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Repository caches a store's tasks and edges. It is safe for concurrent
// use; concurrent writes to one task are last-write-wins in the cache
// unless the patch carries IfUpdatedAt.
type Repository struct {
	store    store.Store
	notifier notify.Notifier
	now      func() time.Time

	mu     sync.RWMutex
	tasks  []*task.Task
	edges  []task.Edge
	loaded bool

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// Option configures a Repository.
type Option func(*Repository)

// WithNotifier sets where notices go. The default discards them.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

// WithClock overrides the time source used for completed_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New returns an empty repository over s. Call Load to populate it.
func New(s store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:    s,
		notifier: notify.Discard,
		now:      time.Now,
		tasks:    []*task.Task{},
		edges:    []task.Edge{},
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches tasks and edges concurrently and waits for both. Each
// collection is replaced only when its own fetch succeeds, so a failed
// refresh keeps what was loaded before.
func (r *Repository) Load(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		tasks      []*task.Task
		edges      []task.Edge
		tErr, eErr error
	)
	wg.Add(2) //nolint:mnd // two collections
	go func() {
		defer wg.Done()
		tasks, tErr = r.store.ListTasks(ctx)
	}()
	go func() {
		defer wg.Done()
		edges, eErr = r.store.ListEdges(ctx)
	}()
	wg.Wait()

	r.mu.Lock()
	if tErr == nil {
		r.tasks = cloneTasks(tasks)
	}
	if eErr == nil {
		r.edges = append([]task.Edge{}, edges...)
	}
	if tErr == nil && eErr == nil {
		r.loaded = true
	}
	r.mu.Unlock()

	if tErr != nil {
		r.fail(store.OpListTasks, "", MsgFetchTasksFailed, tErr)
	}
	if eErr != nil {
		r.fail(store.OpListEdges, "", MsgFetchEdgesFailed, eErr)
	}
	if tErr != nil || eErr != nil {
		return errors.Join(tErr, eErr)
	}
	r.publish()
	return nil
}

// Loaded reports whether a Load has fully succeeded.
func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Snapshot returns a deep copy of the cached collections.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Tasks: cloneTasks(r.tasks),
		Edges: append([]task.Edge{}, r.edges...),
	}
}

// Task returns a copy of the cached task with id.
func (r *Repository) Task(id string) (*task.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return nil, false
}

// Resolve finds a task by exact id or by a unique id prefix, so long
// UUIDs can be abbreviated on the command line.
func (r *Repository) Resolve(ref string) (*task.Task, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return nil, clierr.New(clierr.InvalidTaskID, "task id is required")
	}
	if t, ok := r.Task(ref); ok {
		return t, nil
	}

	r.mu.RLock()
	var matches []*task.Task
	for _, t := range r.tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	r.mu.RUnlock()

	switch len(matches) {
	case 0:
		return nil, task.ValidateTaskNotFound(ref)
	case 1:
		return matches[0].Clone(), nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, clierr.Newf(clierr.AmbiguousTaskID, "task id %q is ambiguous", ref).
			WithDetails(map[string]any{"id": ref, "matches": ids})
	}
}

// Create validates f, inserts it and prepends the stored record. A task
// created as completed gets completed_at stamped.
func (r *Repository) Create(ctx context.Context, f task.Fields) (*task.Task, error) {
	if err := f.Validate(); err != nil {
		r.fail(store.OpInsertTask, "", MsgCreateFailed, err)
		return nil, err
	}
	created, err := r.store.InsertTask(ctx, f.StampCompletion(r.now()))
	if err != nil {
		r.fail(store.OpInsertTask, "", MsgCreateFailed, err)
		return nil, err
	}

	r.mu.Lock()
	r.tasks = append([]*task.Task{created.Clone()}, r.tasks...)
	r.mu.Unlock()

	r.succeed(store.OpInsertTask, created.ID, MsgCreated)
	return created, nil
}

// Update sends p and replaces the cached record with the store's. A status
// change to completed stamps completed_at; any other status clears it.
func (r *Repository) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := p.Validate(); err != nil {
		r.fail(store.OpUpdateTask, id, MsgUpdateFailed, err)
		return nil, err
	}
	updated, err := r.store.UpdateTask(ctx, id, p.StampCompletion(r.now()))
	if err != nil {
		r.fail(store.OpUpdateTask, id, MsgUpdateFailed, err)
		return nil, err
	}

	r.mu.Lock()
	replaced := false
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks[i] = updated.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		r.tasks = append([]*task.Task{updated.Clone()}, r.tasks...)
	}
	r.mu.Unlock()

	r.succeed(store.OpUpdateTask, id, MsgUpdated)
	return updated, nil
}

// SetStatus is Update with only the status changed.
func (r *Repository) SetStatus(ctx context.Context, id string, s task.Status) (*task.Task, error) {
	return r.Update(ctx, id, task.Patch{Status: task.Set(s)})
}

// Delete removes the task, then every edge that references it. Edges are
// deleted remotely first (a store that already cascaded answers not found,
// which is fine) and always dropped from the cache.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteTask(ctx, id); err != nil {
		r.fail(store.OpDeleteTask, id, MsgDeleteFailed, err)
		return err
	}

	r.mu.RLock()
	var touching []task.Edge
	for _, e := range r.edges {
		if e.Touches(id) {
			touching = append(touching, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range touching {
		if err := r.store.DeleteEdge(ctx, e.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			r.fail(store.OpDeleteEdge, e.ID, MsgEdgeRemoveFailed, err)
		}
	}

	r.mu.Lock()
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			break
		}
	}
	kept := make([]task.Edge, 0, len(r.edges))
	for _, e := range r.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	r.edges = kept
	r.mu.Unlock()

	r.succeed(store.OpDeleteTask, id, MsgDeleted)
	return nil
}

// AddEdge records that taskID depends on dependsOnID. Self references,
// duplicates, unknown tasks and edges that would close a cycle are
// rejected before the store is called.
func (r *Repository) AddEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error) {
	if err := r.checkEdge(taskID, dependsOnID); err != nil {
		r.fail(store.OpInsertEdge, taskID, MsgEdgeAddFailed, err)
		return task.Edge{}, err
	}
	e, err := r.store.InsertEdge(ctx, taskID, dependsOnID)
	if err != nil {
		r.fail(store.OpInsertEdge, taskID, MsgEdgeAddFailed, err)
		return task.Edge{}, err
	}

	r.mu.Lock()
	r.edges = append(r.edges, e)
	r.mu.Unlock()

	r.succeed(store.OpInsertEdge, e.ID, MsgEdgeAdded)
	return e, nil
}

func (r *Repository) checkEdge(taskID, dependsOnID string) error {
	if taskID == dependsOnID {
		return task.ValidateSelfReference(taskID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range []string{taskID, dependsOnID} {
		if !r.hasTask(id) {
			return task.ValidateTaskNotFound(id)
		}
	}
	for _, e := range r.edges {
		if e.TaskID == taskID && e.DependsOnTaskID == dependsOnID {
			return task.ValidateDuplicateEdge(taskID, dependsOnID)
		}
	}
	if board.WouldCycle(r.edges, taskID, dependsOnID) {
		return task.ValidateCycle(taskID, dependsOnID)
	}
	return nil
}

func (r *Repository) hasTask(id string) bool {
	for _, t := range r.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// RemoveEdge deletes the edge remotely, then from the cache.
func (r *Repository) RemoveEdge(ctx context.Context, id string) error {
	if err := r.store.DeleteEdge(ctx, id); err != nil {
		r.fail(store.OpDeleteEdge, id, MsgEdgeRemoveFailed, err)
		return err
	}

	r.mu.Lock()
	for i, e := range r.edges {
		if e.ID == id {
			r.edges = append(r.edges[:i:i], r.edges[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.succeed(store.OpDeleteEdge, id, MsgEdgeRemoved)
	return nil
}

func (r *Repository) succeed(op, id, msg string) {
	r.notifier.Notify(notify.Notice{Level: notify.Success, Op: op, TaskID: id, Message: msg, Time: r.now()})
	r.publish()
}

func (r *Repository) fail(op, id, msg string, err error) {
	r.notifier.Notify(notify.Notice{Level: notify.Failure, Op: op, TaskID: id, Message: msg, Err: err, Time: r.now()})
}

func cloneTasks(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
