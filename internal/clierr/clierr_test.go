package clierr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, New(InternalError, "boom").ExitCode())
	assert.Equal(t, 1, New(TaskNotFound, "missing").ExitCode())
}

func TestCodeOf(t *testing.T) {
	base := Newf(SelfReference, "task %s cannot depend on itself", "a").
		WithDetails(map[string]any{"id": "a"})
	wrapped := fmt.Errorf("adding edge: %w", base)

	assert.Equal(t, SelfReference, CodeOf(wrapped))
	assert.Equal(t, "a", base.Details["id"])
	assert.Empty(t, CodeOf(fmt.Errorf("plain")))
}
