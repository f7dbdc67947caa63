// Package store defines the persistence contract for tasks and dependency
// edges. Backends live in the subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Sentinel errors. Backends wrap them so callers can use errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("record changed since it was read")
)

// Store is the remote side of the task repository.
type Store interface {
	// ListTasks returns all tasks, newest first.
	ListTasks(ctx context.Context) ([]*task.Task, error)
	ListEdges(ctx context.Context) ([]task.Edge, error)
	InsertTask(ctx context.Context, f task.Fields) (*task.Task, error)
	// UpdateTask applies p and returns the full stored record.
	UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	InsertEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error)
	DeleteEdge(ctx context.Context, id string) error
}

// Error wraps any failure raised by a Store with the operation that failed.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as a *Error for op, or nil when err is nil. An err that
// already is a *Error is returned as is.
func Wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, ID: id, Err: err}
}

// NotFound returns a *Error wrapping ErrNotFound.
func NotFound(op, id string) error {
	return &Error{Op: op, ID: id, Err: ErrNotFound}
}

// Conflict returns a *Error wrapping ErrConflict.
func Conflict(op, id string) error {
	return &Error{Op: op, ID: id, Err: ErrConflict}
}

// Operation names used in errors and notices.
const (
	OpListTasks  = "list tasks"
	OpListEdges  = "list dependencies"
	OpInsertTask = "create task"
	OpUpdateTask = "update task"
	OpDeleteTask = "delete task"
	OpInsertEdge = "add dependency"
	OpDeleteEdge = "remove dependency"
)
