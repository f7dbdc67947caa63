package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(OpDeleteTask, "1", nil))

	err := Wrap(OpDeleteTask, "1", errors.New("connection refused"))
	var se *Error
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, OpDeleteTask, se.Op)
	assert.Equal(t, "delete task 1: connection refused", err.Error())

	again := Wrap(OpUpdateTask, "2", fmt.Errorf("ctx: %w", err))
	assert.ErrorAs(t, again, &se)
	assert.Equal(t, OpDeleteTask, se.Op, "existing store error is kept")
}

func TestSentinels(t *testing.T) {
	assert.ErrorIs(t, NotFound(OpUpdateTask, "x"), ErrNotFound)
	assert.ErrorIs(t, Conflict(OpUpdateTask, "x"), ErrConflict)
	assert.Equal(t, "list tasks: not found", NotFound(OpListTasks, "").Error())
}
