package notify

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiSkipsNil(t *testing.T) {
	var got []string
	a := Func(func(n Notice) { got = append(got, "a:"+n.Message) })
	b := Func(func(n Notice) { got = append(got, "b:"+n.Message) })

	Multi(a, nil, b).Notify(Notice{Message: "hi"})
	assert.Equal(t, []string{"a:hi", "b:hi"}, got)
	Discard.Notify(Notice{})
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLog(logger)

	n.Notify(Notice{Level: Success, Op: "create task", TaskID: "7", Message: "Task created successfully"})
	n.Notify(Notice{Level: Failure, Op: "delete task", Message: "Failed to delete task", Err: errors.New("boom")})

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.InfoLevel, hook.Entries[0].Level)
	assert.Equal(t, "7", hook.Entries[0].Data["id"])
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[1].Level)
	assert.Equal(t, "delete task", hook.Entries[1].Data["op"])
	assert.EqualError(t, hook.Entries[1].Data[logrus.ErrorKey].(error), "boom")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "error", Failure.String())
}
