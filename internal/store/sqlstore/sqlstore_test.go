package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/storetest"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "taskdeck.db")
	s, err := Open(context.Background(), SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openSQLite(t) })
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	assert.NoError(t, Migrate(s.db, SQLite))
}

func TestTimestampsAreMicrosecondUTC(t *testing.T) {
	s := openSQLite(t)
	local := time.FixedZone("CET", 3600)
	s.SetNow(func() time.Time { return time.Date(2024, time.May, 6, 8, 0, 0, 123456789, local) })

	created, err := s.InsertTask(context.Background(), storetest.Sample("stamp"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, created.CreatedAt.Location())
	assert.Equal(t, 123456000, created.CreatedAt.Nanosecond())

	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, created.UpdatedAt.Equal(tasks[0].UpdatedAt))
}

func TestUpdateWithStampFromList(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	_, err := s.InsertTask(ctx, storetest.Sample("cas"))
	require.NoError(t, err)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	stamp := tasks[0].UpdatedAt
	_, err = s.UpdateTask(ctx, tasks[0].ID, task.Patch{Title: task.Set("cas ok"), IfUpdatedAt: &stamp})
	assert.NoError(t, err)
}

func TestInsertEdgeUnknownEndpoint(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	a, err := s.InsertTask(ctx, storetest.Sample("A"))
	require.NoError(t, err)

	_, err = s.InsertEdge(ctx, a.ID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	b, err := s.InsertTask(ctx, storetest.Sample("B"))
	require.NoError(t, err)
	_, err = s.InsertEdge(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = s.InsertEdge(ctx, a.ID, b.ID)
	assert.Error(t, err)
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	d, err = ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "file:x.db?_foreign_keys=on", withForeignKeys("file:x.db"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on", withForeignKeys("file:x.db?cache=shared"))
	assert.Equal(t, "file:x.db?_fk=1", withForeignKeys("file:x.db?_fk=1"))
}
