package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func init() {
	output.DisableColor()
}

// resetFlags puts every flag of c and its children back to its default so
// one test's flags do not leak into the next invocation.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args against the board in dir and returns
// what it printed to stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	rootCmd.SetArgs(append([]string{"--dir", dir, "--no-color"}, args...))
	_, runErr := rootCmd.ExecuteC()

	_ = w.Close()
	<-done
	return buf.String(), runErr
}

func newBoard(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), config.DefaultDir)
	_, err := run(t, dir, "init", "--name", "test")
	require.NoError(t, err)
	return dir
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCreateListShow(t *testing.T) {
	dir := newBoard(t)

	out, err := run(t, dir, "create", "Write report", "--priority", "high", "--estimate", "1h30m", "--json")
	require.NoError(t, err)
	created := decode[task.Task](t, out)
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, task.PriorityHigh, created.Priority)
	assert.Equal(t, task.StatusPending, created.Status)
	require.NotNil(t, created.EstimatedDuration)
	assert.Equal(t, 90, *created.EstimatedDuration)

	_, err = run(t, dir, "create", "--title", "Review report", "--depends-on", "1")
	require.NoError(t, err)

	out, err = run(t, dir, "list", "--json", "--sort", "priority")
	require.NoError(t, err)
	tasks := decode[[]task.Task](t, out)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Write report", tasks[0].Title)

	out, err = run(t, dir, "list", "--json", "--blocked")
	require.NoError(t, err)
	blocked := decode[[]task.Task](t, out)
	require.Len(t, blocked, 1)
	assert.Equal(t, "Review report", blocked[0].Title)

	out, err = run(t, dir, "show", "2", "--json")
	require.NoError(t, err)
	detail := decode[map[string]any](t, out)
	assert.Equal(t, true, detail["blocked"])
	deps, ok := detail["depends_on"].([]any)
	require.True(t, ok)
	assert.Len(t, deps, 1)
}

func TestCreateDefaultsFromConfig(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "config", "set", "defaults.priority", "low")
	require.NoError(t, err)

	out, err := run(t, dir, "create", "Chore", "--json")
	require.NoError(t, err)
	created := decode[task.Task](t, out)
	assert.Equal(t, task.PriorityLow, created.Priority)
	require.NotNil(t, created.EstimatedDuration)
	assert.Equal(t, config.DefaultEstimatedDuration, *created.EstimatedDuration)
}

func TestCreateRequiresTitle(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "create")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))

	_, err = run(t, dir, "create", "A", "--title", "B")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))
}

func TestMoveStampsCompletion(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "create", "Task")
	require.NoError(t, err)

	out, err := run(t, dir, "move", "1", "--next", "--json")
	require.NoError(t, err)
	moved := decode[map[string]any](t, out)
	assert.Equal(t, "in_progress", moved["status"])
	assert.Equal(t, true, moved["changed"])

	out, err = run(t, dir, "move", "1", "completed", "--json")
	require.NoError(t, err)
	moved = decode[map[string]any](t, out)
	assert.NotEmpty(t, moved["completed_at"])

	_, err = run(t, dir, "move", "1", "--next")
	assert.Equal(t, clierr.InvalidStatus, clierr.CodeOf(err))

	out, err = run(t, dir, "move", "1", "pending", "--json")
	require.NoError(t, err)
	moved = decode[map[string]any](t, out)
	assert.Nil(t, moved["completed_at"])
}

func TestEdit(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "create", "Draft")
	require.NoError(t, err)

	out, err := run(t, dir, "edit", "1", "--title", "Final", "--scheduled", "2024-03-04", "--start", "09:15", "--json")
	require.NoError(t, err)
	edited := decode[task.Task](t, out)
	assert.Equal(t, "Final", edited.Title)
	require.NotNil(t, edited.ScheduledDate)
	assert.Equal(t, "2024-03-04", edited.ScheduledDate.String())
	require.NotNil(t, edited.ScheduledStartTime)
	assert.Equal(t, "09:15", edited.ScheduledStartTime.String())

	out, err = run(t, dir, "edit", "1", "--clear-scheduled", "--json")
	require.NoError(t, err)
	edited = decode[task.Task](t, out)
	assert.Nil(t, edited.ScheduledDate)
	assert.Nil(t, edited.ScheduledStartTime)

	_, err = run(t, dir, "edit", "1")
	assert.Equal(t, clierr.NoChanges, clierr.CodeOf(err))
}

func TestDepsRejectCycle(t *testing.T) {
	dir := newBoard(t)
	for _, title := range []string{"A", "B"} {
		_, err := run(t, dir, "create", title)
		require.NoError(t, err)
	}

	_, err := run(t, dir, "deps", "add", "2", "1")
	require.NoError(t, err)
	_, err = run(t, dir, "deps", "add", "1", "2")
	assert.Equal(t, clierr.DependencyCycle, clierr.CodeOf(err))
	_, err = run(t, dir, "deps", "add", "1", "1")
	assert.Equal(t, clierr.SelfReference, clierr.CodeOf(err))

	_, err = run(t, dir, "deps", "rm", "2", "1")
	require.NoError(t, err)
	out, err := run(t, dir, "deps", "list", "--json")
	require.NoError(t, err)
	assert.Empty(t, decode[[]map[string]any](t, out))
}

func TestDeleteCascadesEdges(t *testing.T) {
	dir := newBoard(t)
	for _, title := range []string{"A", "B"} {
		_, err := run(t, dir, "create", title)
		require.NoError(t, err)
	}
	_, err := run(t, dir, "deps", "add", "2", "1")
	require.NoError(t, err)

	_, err = run(t, dir, "delete", "1", "--yes")
	require.NoError(t, err)

	out, err := run(t, dir, "deps", "list", "--json")
	require.NoError(t, err)
	assert.Empty(t, decode[[]map[string]any](t, out))

	_, err = run(t, dir, "show", "1")
	assert.Equal(t, clierr.TaskNotFound, clierr.CodeOf(err))
}

func TestDeleteBatchNeedsYes(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "delete", "1,2")
	assert.Equal(t, clierr.ConfirmationReq, clierr.CodeOf(err))
}

func TestNext(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "next")
	assert.Equal(t, clierr.NothingToPick, clierr.CodeOf(err))

	_, err = run(t, dir, "create", "Low one", "--priority", "low")
	require.NoError(t, err)
	_, err = run(t, dir, "create", "Urgent", "--priority", "high")
	require.NoError(t, err)

	out, err := run(t, dir, "next", "--json")
	require.NoError(t, err)
	assert.Equal(t, "Urgent", decode[task.Task](t, out).Title)
}

func TestPlanApply(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "config", "set", "planner.delay", "0s")
	require.NoError(t, err)

	out, err := run(t, dir, "plan", "one", "two", "three", "four", "--apply", "--json")
	require.NoError(t, err)
	created := decode[[]task.Task](t, out)
	require.Len(t, created, 4)
	assert.Equal(t, "one", created[0].Title)
	assert.Equal(t, task.PriorityHigh, created[0].Priority)
	assert.Equal(t, "four", created[1].Title)
	assert.NotEmpty(t, created[0].Description)
}

func TestScheduleWeek(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "create", "Standup", "--scheduled", "2024-03-06", "--start", "09:00", "--estimate", "15")
	require.NoError(t, err)

	out, err := run(t, dir, "schedule", "--date", "2024-03-06", "--json")
	require.NoError(t, err)
	v := decode[struct {
		Days []struct {
			Date         string           `json:"date"`
			Tasks        []map[string]any `json:"tasks"`
			TotalMinutes int              `json:"total_minutes"`
		} `json:"days"`
	}](t, out)
	require.Len(t, v.Days, 7)
	assert.Equal(t, "2024-03-04", v.Days[0].Date)
	assert.Len(t, v.Days[2].Tasks, 1)
	assert.Equal(t, 15, v.Days[2].TotalMinutes)
}

func TestActivityLog(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "create", "Logged")
	require.NoError(t, err)

	out, err := run(t, dir, "log", "--json")
	require.NoError(t, err)
	entries := decode[[]map[string]any](t, out)
	require.NotEmpty(t, entries)
	assert.Equal(t, store.OpInsertTask, entries[len(entries)-1]["action"])
}

func TestConfigGetSet(t *testing.T) {
	dir := newBoard(t)

	out, err := run(t, dir, "config", "get", "backend.kind")
	require.NoError(t, err)
	assert.Equal(t, "file", strings.TrimSpace(out))

	_, err = run(t, dir, "config", "set", "backend.kind", "sqlite")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))

	_, err = run(t, dir, "config", "set", "schedule.week_start", "friday")
	require.Error(t, err)
	assert.Equal(t, clierr.InvalidInput, toCLIError(err).Code)
}

func TestInitTwice(t *testing.T) {
	dir := newBoard(t)
	_, err := run(t, dir, "init")
	assert.Equal(t, clierr.BoardAlreadyExists, clierr.CodeOf(err))
}

func TestToCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"cli error passes through", clierr.New(clierr.NoChanges, "x"), clierr.NoChanges},
		{"task not found", store.NotFound(store.OpUpdateTask, "7"), clierr.TaskNotFound},
		{"edge not found", store.NotFound(store.OpDeleteEdge, "3"), clierr.EdgeNotFound},
		{"conflict", store.Conflict(store.OpUpdateTask, "7"), clierr.Conflict},
		{"other store failure", store.Wrap(store.OpListTasks, "", io.ErrUnexpectedEOF), clierr.StoreError},
		{"missing board", config.ErrNotFound, clierr.BoardNotFound},
		{"invalid config", fmt.Errorf("%w: bad", config.ErrInvalid), clierr.InvalidInput},
		{"anything else", io.EOF, clierr.InternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, toCLIError(tt.err).Code)
		})
	}
}

func TestParseRefs(t *testing.T) {
	refs, err := parseRefs(" #1, 2,,1 ,abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "abc"}, refs)

	_, err = parseRefs(" , ")
	assert.Equal(t, clierr.InvalidTaskID, clierr.CodeOf(err))
}

func TestParseEstimate(t *testing.T) {
	n, err := parseEstimate("45")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	n, err = parseEstimate("2h")
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	_, err = parseEstimate("-5")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))
	_, err = parseEstimate("soon")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Local, due.Location())
	assert.Equal(t, 23, due.Hour())
	assert.Equal(t, 1, due.Day())

	due, err = parseDue("2024-05-01T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, due.Hour())

	_, err = parseDue("May 1st")
	assert.Equal(t, clierr.InvalidDate, clierr.CodeOf(err))
}
