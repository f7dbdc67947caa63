package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/planner"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func init() {
	DisableColor()
}

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func mk(id, title string, p task.Priority, s task.Status) *task.Task {
	return &task.Task{ID: id, Title: title, Priority: p, Status: s, CreatedAt: created, UpdatedAt: created}
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvVar, "")
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv(EnvVar, "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	JSONError(&buf, "TASK_NOT_FOUND", "task 9 not found", nil)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, ErrorResponse{Error: "task 9 not found", Code: "TASK_NOT_FOUND"}, got)
}

func TestTaskTable(t *testing.T) {
	tasks := []*task.Task{
		mk("1", "Write report", task.PriorityHigh, task.StatusPending),
		mk("2", "Review", task.PriorityLow, task.StatusCompleted),
	}
	mins := 90
	tasks[0].EstimatedDuration = &mins

	var buf bytes.Buffer
	TaskTable(&buf, tasks, map[string]bool{"1": true})
	out := buf.String()
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "⛔ Write report")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "completed")
}

func TestTaskCompact(t *testing.T) {
	tk := mk("3f2a9c1e-0000-4000-8000-000000000000", "Ship", task.PriorityMedium, task.StatusInProgress)
	d := date.New(2024, 3, 4)
	tk.ScheduledDate = &d

	var buf bytes.Buffer
	TaskCompact(&buf, []*task.Task{tk}, nil)
	assert.Equal(t, "#3f2a9c1e [in_progress/Medium] Ship on:2024-03-04\n", buf.String())
}

func TestTaskDetail(t *testing.T) {
	a := mk("1", "Design", task.PriorityHigh, task.StatusPending)
	b := mk("2", "Build", task.PriorityMedium, task.StatusPending)
	b.Description = "Some **notes**"
	edges := []task.Edge{{ID: "1", TaskID: "2", DependsOnTaskID: "1"}}

	d := NewDetail(b, []*task.Task{a, b}, edges, false)
	assert.True(t, d.Blocked)
	require.Len(t, d.DependsOn, 1)

	var buf bytes.Buffer
	TaskDetail(&buf, d)
	out := buf.String()
	assert.Contains(t, out, "Task 2: Build")
	assert.Contains(t, out, "(blocked)")
	assert.Contains(t, out, "Depends on")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "Some **notes**")

	buf.Reset()
	TaskDetail(&buf, NewDetail(a, []*task.Task{a, b}, edges, false))
	assert.Contains(t, buf.String(), "Blocks")
	assert.NotContains(t, buf.String(), "(blocked)")
}

func TestOverview(t *testing.T) {
	tasks := []*task.Task{
		mk("1", "A", task.PriorityHigh, task.StatusPending),
		mk("2", "B", task.PriorityLow, task.StatusCompleted),
	}
	o := board.Summary("Home", tasks, nil, created)

	var buf bytes.Buffer
	OverviewTable(&buf, o)
	assert.Contains(t, buf.String(), "Home")
	assert.Contains(t, buf.String(), "Next: 1 A High")

	buf.Reset()
	OverviewCompact(&buf, o)
	assert.Contains(t, buf.String(), "Home (2 tasks)")
	assert.Contains(t, buf.String(), "Priority: High=1 Medium=0 Low=1")
}

func TestSuggestionTable(t *testing.T) {
	s := []planner.Suggestion{
		{Title: "a", Priority: task.PriorityHigh, EstimatedDuration: 30, Order: 1, Reasoning: "because"},
		{Title: "b", Priority: task.PriorityLow, EstimatedDuration: 60, Order: 2, Reasoning: "because"},
	}
	var buf bytes.Buffer
	SuggestionTable(&buf, s)
	assert.Contains(t, buf.String(), "Total estimated time: 1h 30m")
}

func TestScheduleAndActivity(t *testing.T) {
	tk := mk("1", "Standup", task.PriorityMedium, task.StatusPending)
	d := date.New(2024, 3, 4)
	c := date.NewClock(9, 15)
	tk.ScheduledDate, tk.ScheduledStartTime = &d, &c

	var buf bytes.Buffer
	ScheduleCompact(&buf, board.Week([]*task.Task{tk}, d, time.Monday))
	assert.Contains(t, buf.String(), "2024-03-04 0m: 09:15 Standup")

	buf.Reset()
	ActivityCompact(&buf, []activity.Entry{{Timestamp: created, Action: "create", Detail: "Standup", Error: "boom"}})
	assert.Equal(t, "2024-03-01T09:00:00Z create Standup error=\"boom\"\n", buf.String())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1d 2h", FormatDuration(26*time.Hour))
	assert.Equal(t, "0h 5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "12", ShortID("12"))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}
