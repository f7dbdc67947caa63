package filelock

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	require.NoError(t, err)

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		second, err := Lock(path)
		if err != nil {
			return
		}
		acquired.Store(true)
		_ = second()
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load(), "second lock must wait")

	require.NoError(t, unlock())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second lock never acquired")
	}
	assert.True(t, acquired.Load())
}
