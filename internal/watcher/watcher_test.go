package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, dir string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New([]string{dir}, func() { calls.Add(1) }, WithDelay(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx, nil)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return &calls
}

func TestDebouncedCallback(t *testing.T) {
	dir := t.TempDir()
	calls := start(t, dir)

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, fmt.Sprintf("%03d-task.md", i+1))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	calls := start(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "activity.jsonl"), []byte("{}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001-a.md.tmp"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestIgnoreBookkeeping(t *testing.T) {
	assert.True(t, IgnoreBookkeeping(".lock"))
	assert.True(t, IgnoreBookkeeping("store.yml.tmp"))
	assert.False(t, IgnoreBookkeeping("dependencies.yml"))
	assert.False(t, IgnoreBookkeeping("taskdeck.db"))
}

func TestNewMissingPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope")}, func() {})
	assert.Error(t, err)
}
