package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/storetest"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "tasks")
	require.NoError(t, err)
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newStore(t) })
}

func TestTaskFileLayout(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.InsertTask(ctx, storetest.Sample("Fix the login bug!"))
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	path := filepath.Join(s.tasksDir, "001-fix-the-login-bug.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "title: Fix the login bug!")
	assert.Contains(t, content, "2024-02-28")
	assert.Contains(t, content, "09:30")
	assert.True(t, strings.HasSuffix(content, "---\nLine one\nLine two"))
}

func TestRenameOnTitleChange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.InsertTask(ctx, storetest.Sample("Old name"))
	require.NoError(t, err)

	_, err = s.UpdateTask(ctx, created.ID, task.Patch{Title: task.Set("New name")})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(s.tasksDir, "001-old-name.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.tasksDir, "001-new-name.md"))
	assert.NoError(t, err)
}

func TestMalformedFilesAreSkipped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s, err := New(t.TempDir(), "tasks", WithLogger(logger))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.InsertTask(ctx, storetest.Sample("Good"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.tasksDir, "002-bad.md"), []byte("no frontmatter"), 0o600))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "002-bad.md", hook.LastEntry().Data["file"])
}

func TestCountersSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := New(dir, "tasks")
	require.NoError(t, err)
	_, err = s1.InsertTask(ctx, storetest.Sample("one"))
	require.NoError(t, err)

	s2, err := New(dir, "tasks")
	require.NoError(t, err)
	second, err := s2.InsertTask(ctx, storetest.Sample("two"))
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)
}

func TestFailedInsertDoesNotReuseID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// A directory in the way makes the task file rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(s.tasksDir, "001-blocked.md"), 0o750))
	_, err := s.InsertTask(ctx, storetest.Sample("blocked"))
	require.Error(t, err)

	created, err := s.InsertTask(ctx, storetest.Sample("next"))
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)

	_, err = os.Stat(filepath.Join(s.tasksDir, "001-blocked.md.tmp"))
	assert.True(t, os.IsNotExist(err))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2", tasks[0].ID)
}

func TestNonCanonicalIDsDoNotMatch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.InsertTask(ctx, storetest.Sample("Seven"))
	require.NoError(t, err)
	require.Equal(t, "1", created.ID)

	for _, id := range []string{"001", "01", "+1", "1.0", "0"} {
		_, err := s.UpdateTask(ctx, id, task.Patch{Title: task.Set("changed")})
		assert.ErrorIs(t, err, store.ErrNotFound, id)
	}

	path, err := findByID(s.tasksDir, "1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.tasksDir, "001-seven.md"), path)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("  Hello, World!  "))
	assert.Equal(t, "task", slugify("!!!"))
	long := slugify(strings.Repeat("word ", 20))
	assert.LessOrEqual(t, len(long), maxSlugLength)
	assert.False(t, strings.HasSuffix(long, "-"))
	assert.Equal(t, "1234-x.md", taskFilename(1234, "x"))
}

func TestSplitFrontmatter(t *testing.T) {
	fm, body, err := splitFrontmatter([]byte("---\nid: \"1\"\n---\n\n  body\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "id: \"1\"", string(fm))
	assert.Equal(t, "\n  body\n\n", body)

	fm, body, err = splitFrontmatter([]byte("---\nid: \"1\"\n---"))
	require.NoError(t, err)
	assert.Equal(t, "id: \"1\"", string(fm))
	assert.Empty(t, body)

	_, _, err = splitFrontmatter([]byte("---\nid: 1\n"))
	assert.Error(t, err)
}
