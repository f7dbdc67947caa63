package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ListTasks(ctx)
	var se *store.Error
	assert.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, context.Canceled)
}
