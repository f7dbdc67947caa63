// Package filestore keeps tasks as markdown files with YAML frontmatter in a
// board directory. Dependency edges live in dependencies.yml and id
// counters in store.yml. Mutations are serialized with an advisory file lock
// so several processes can share one board.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskdeck/internal/filelock"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const (
	// EdgesFileName holds the dependency edges.
	EdgesFileName = "dependencies.yml"
	// MetaFileName holds the id counters.
	MetaFileName = "store.yml"

	lockFileName = ".lock"
	dirMode      = 0o750
)

// meta is the content of store.yml.
type meta struct {
	NextTaskID int `yaml:"next_task_id"`
	NextEdgeID int `yaml:"next_edge_id"`
}

// Store is a store.Store over a board directory.
type Store struct {
	dir      string
	tasksDir string
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped files.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens the board at dir, storing task files under tasksDir (relative
// to dir). Missing directories are created.
func New(dir, tasksDir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:      dir,
		tasksDir: filepath.Join(dir, tasksDir),
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.tasksDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	return s, nil
}

// WatchPaths returns the directories whose changes invalidate a snapshot.
func (s *Store) WatchPaths() []string {
	return []string{s.tasksDir, s.dir}
}

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpListTasks, "", err)
	}
	tasks, warnings, err := readAllLenient(s.tasksDir)
	if err != nil {
		return nil, store.Wrap(store.OpListTasks, "", err)
	}
	for _, w := range warnings {
		s.log.WithError(w.Err).WithField("file", w.File).Warn("skipping malformed task file")
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return numericID(tasks[i].ID) > numericID(tasks[j].ID)
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *Store) ListEdges(ctx context.Context) ([]task.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpListEdges, "", err)
	}
	edges, err := s.readEdges()
	if err != nil {
		return nil, store.Wrap(store.OpListEdges, "", err)
	}
	return edges, nil
}

func (s *Store) InsertTask(ctx context.Context, f task.Fields) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	if err := f.Validate(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}

	var created *task.Task
	err := s.locked(func() error {
		m, err := s.readMeta()
		if err != nil {
			return err
		}
		// Ids are never reused, even when the task write below fails.
		id := m.NextTaskID
		m.NextTaskID++
		if err := s.writeMeta(m); err != nil {
			return err
		}
		t := f.Build(strconv.Itoa(id), s.now())
		if err := writeTask(filepath.Join(s.tasksDir, taskFilename(id, t.Title)), t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	return created, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	if err := p.Validate(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}

	var updated *task.Task
	err := s.locked(func() error {
		path, err := findByID(s.tasksDir, id)
		if err != nil {
			return err
		}
		if path == "" {
			return store.NotFound(store.OpUpdateTask, id)
		}
		t, err := readTask(path)
		if err != nil {
			return err
		}
		if p.IfUpdatedAt != nil && !p.IfUpdatedAt.Equal(t.UpdatedAt) {
			return store.Conflict(store.OpUpdateTask, id)
		}
		p.Apply(t)
		t.UpdatedAt = s.now()

		newPath := filepath.Join(s.tasksDir, taskFilename(numericID(t.ID), t.Title))
		if err := writeTask(newPath, t); err != nil {
			return err
		}
		if newPath != path {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing renamed task file: %w", err)
			}
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	return updated, nil
}

// DeleteTask removes the task file and every edge touching the task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap(store.OpDeleteTask, id, err)
	}

	err := s.locked(func() error {
		path, err := findByID(s.tasksDir, id)
		if err != nil {
			return err
		}
		if path == "" {
			return store.NotFound(store.OpDeleteTask, id)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing task file: %w", err)
		}

		edges, err := s.readEdges()
		if err != nil {
			return err
		}
		kept := edges[:0]
		for _, e := range edges {
			if !e.Touches(id) {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(edges) {
			return nil
		}
		return s.writeEdges(kept)
	})
	return store.Wrap(store.OpDeleteTask, id, err)
}

func (s *Store) InsertEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error) {
	if err := ctx.Err(); err != nil {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", err)
	}
	if taskID == dependsOnID {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, taskID, task.ValidateSelfReference(taskID))
	}

	var created task.Edge
	err := s.locked(func() error {
		for _, id := range []string{taskID, dependsOnID} {
			path, err := findByID(s.tasksDir, id)
			if err != nil {
				return err
			}
			if path == "" {
				return store.NotFound(store.OpInsertEdge, id)
			}
		}
		edges, err := s.readEdges()
		if err != nil {
			return err
		}
		for _, e := range edges {
			if e.TaskID == taskID && e.DependsOnTaskID == dependsOnID {
				return task.ValidateDuplicateEdge(taskID, dependsOnID)
			}
		}
		m, err := s.readMeta()
		if err != nil {
			return err
		}
		created = task.Edge{
			ID:              strconv.Itoa(m.NextEdgeID),
			TaskID:          taskID,
			DependsOnTaskID: dependsOnID,
			CreatedAt:       s.now(),
		}
		if err := s.writeEdges(append(edges, created)); err != nil {
			return err
		}
		m.NextEdgeID++
		return s.writeMeta(m)
	})
	if err != nil {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", err)
	}
	return created, nil
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap(store.OpDeleteEdge, id, err)
	}

	err := s.locked(func() error {
		edges, err := s.readEdges()
		if err != nil {
			return err
		}
		for i, e := range edges {
			if e.ID == id {
				return s.writeEdges(append(edges[:i], edges[i+1:]...))
			}
		}
		return store.NotFound(store.OpDeleteEdge, id)
	})
	return store.Wrap(store.OpDeleteEdge, id, err)
}

// locked runs fn while holding the board's advisory lock.
func (s *Store) locked(fn func() error) error {
	unlock, err := filelock.Lock(filepath.Join(s.dir, lockFileName))
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit
	return fn()
}

func (s *Store) readMeta() (meta, error) {
	m := meta{NextTaskID: 1, NextEdgeID: 1}
	data, err := os.ReadFile(filepath.Join(s.dir, MetaFileName)) //nolint:gosec // trusted board dir
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, fmt.Errorf("reading %s: %w", MetaFileName, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", MetaFileName, err)
	}
	return m, nil
}

func (s *Store) writeMeta(m meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", MetaFileName, err)
	}
	return writeFileAtomic(filepath.Join(s.dir, MetaFileName), data)
}

func (s *Store) readEdges() ([]task.Edge, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, EdgesFileName)) //nolint:gosec // trusted board dir
	if err != nil {
		if os.IsNotExist(err) {
			return []task.Edge{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", EdgesFileName, err)
	}
	var edges []task.Edge
	if err := yaml.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", EdgesFileName, err)
	}
	if edges == nil {
		edges = []task.Edge{}
	}
	return edges, nil
}

func (s *Store) writeEdges(edges []task.Edge) error {
	data, err := yaml.Marshal(edges)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", EdgesFileName, err)
	}
	return writeFileAtomic(filepath.Join(s.dir, EdgesFileName), data)
}

func numericID(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}
