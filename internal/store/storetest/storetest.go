// Package storetest holds the behavior every store.Store backend must share.
// Backend tests call Run with a factory that returns an empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the full Store contract against backends built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("insert round trip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("list newest first", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("description kept verbatim", func(t *testing.T) { testDescriptionVerbatim(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("update conflict", func(t *testing.T) { testUpdateConflict(t, newStore(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("edges", func(t *testing.T) { testEdges(t, newStore(t)) })
	t.Run("delete cascades edges", func(t *testing.T) { testDeleteCascade(t, newStore(t)) })
}

// Sample returns fully populated create fields.
func Sample(title string) task.Fields {
	due := time.Date(2024, time.March, 1, 17, 0, 0, 0, time.UTC)
	mins := 90
	day := date.New(2024, time.February, 28)
	start := date.NewClock(9, 30)
	return task.Fields{
		Title:              title,
		Description:        "Line one\nLine two",
		Priority:           task.PriorityHigh,
		Status:             task.StatusPending,
		DueDate:            &due,
		EstimatedDuration:  &mins,
		ScheduledDate:      &day,
		ScheduledStartTime: &start,
	}
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := Sample("Write quarterly report")

	created, err := s.InsertTask(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	got := tasks[0]

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.Priority, got.Priority)
	assert.Equal(t, in.Status, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, in.DueDate.Equal(*got.DueDate), "due date %v != %v", in.DueDate, got.DueDate)
	assert.Equal(t, in.EstimatedDuration, got.EstimatedDuration)
	require.NotNil(t, got.ScheduledDate)
	assert.Equal(t, in.ScheduledDate.String(), got.ScheduledDate.String())
	assert.Equal(t, in.ScheduledStartTime, got.ScheduledStartTime)
	assert.Nil(t, got.CompletedAt)

	_, err = s.InsertTask(ctx, task.Fields{Title: "", Priority: task.PriorityLow, Status: task.StatusPending})
	assert.Error(t, err, "empty title is rejected")
}

func testDescriptionVerbatim(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := Sample("Whitespace")
	in.Description = "\n  indented first line\nlast line\n\n"

	created, err := s.InsertTask(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in.Description, created.Description)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, in.Description, tasks[0].Description)

	desc := "  ---\n\ttabbed  "
	updated, err := s.UpdateTask(ctx, created.ID, task.Patch{Description: task.Set(desc)})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, desc, tasks[0].Description)
}

func testListOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		f := task.Fields{Title: title, Priority: task.PriorityLow, Status: task.StatusPending}
		created, err := s.InsertTask(ctx, f)
		require.NoError(t, err)
		ids = append(ids, created.ID)
		time.Sleep(2 * time.Millisecond)
	}

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	created, err := s.InsertTask(ctx, Sample("Plan sprint"))
	require.NoError(t, err)

	now := time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC)
	updated, err := s.UpdateTask(ctx, created.ID, task.Patch{
		Status:            task.Set(task.StatusCompleted),
		CompletedAt:       task.Set(now),
		EstimatedDuration: task.Clear[int](),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Plan sprint", updated.Title, "untouched fields are returned")
	assert.Equal(t, task.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, now.Equal(*updated.CompletedAt))
	assert.Nil(t, updated.EstimatedDuration)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	reopened, err := s.UpdateTask(ctx, created.ID, task.Patch{
		Status:      task.Set(task.StatusInProgress),
		CompletedAt: task.Clear[time.Time](),
	})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	_, err = s.UpdateTask(ctx, "does-not-exist", task.Patch{Title: task.Set("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)
	var se *store.Error
	assert.ErrorAs(t, err, &se)
}

func testUpdateConflict(t *testing.T, s store.Store) {
	ctx := context.Background()
	created, err := s.InsertTask(ctx, Sample("Review PR"))
	require.NoError(t, err)

	stamp := created.UpdatedAt
	first, err := s.UpdateTask(ctx, created.ID, task.Patch{Title: task.Set("Review PR #12"), IfUpdatedAt: &stamp})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = s.UpdateTask(ctx, created.ID, task.Patch{Title: task.Set("stale write"), IfUpdatedAt: &stamp})
	assert.ErrorIs(t, err, store.ErrConflict)

	fresh := first.UpdatedAt
	_, err = s.UpdateTask(ctx, created.ID, task.Patch{Title: task.Set("fresh write"), IfUpdatedAt: &fresh})
	assert.NoError(t, err)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	created, err := s.InsertTask(ctx, Sample("Throwaway"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, created.ID))
	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, s.DeleteTask(ctx, created.ID), store.ErrNotFound)
}

func testEdges(t *testing.T, s store.Store) {
	ctx := context.Background()
	a, err := s.InsertTask(ctx, Sample("A"))
	require.NoError(t, err)
	b, err := s.InsertTask(ctx, Sample("B"))
	require.NoError(t, err)

	e, err := s.InsertEdge(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, a.ID, e.TaskID)
	assert.Equal(t, b.ID, e.DependsOnTaskID)

	_, err = s.InsertEdge(ctx, a.ID, a.ID)
	assert.Error(t, err, "self edge")

	edges, err := s.ListEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, e.ID, edges[0].ID)

	require.NoError(t, s.DeleteEdge(ctx, e.ID))
	edges, err = s.ListEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges)

	assert.ErrorIs(t, s.DeleteEdge(ctx, e.ID), store.ErrNotFound)
}

func testDeleteCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	a, err := s.InsertTask(ctx, Sample("A"))
	require.NoError(t, err)
	b, err := s.InsertTask(ctx, Sample("B"))
	require.NoError(t, err)
	c, err := s.InsertTask(ctx, Sample("C"))
	require.NoError(t, err)

	_, err = s.InsertEdge(ctx, a.ID, b.ID)
	require.NoError(t, err)
	keep, err := s.InsertEdge(ctx, a.ID, c.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, b.ID))
	edges, err := s.ListEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, keep.ID, edges[0].ID)
}
