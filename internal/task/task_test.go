package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
)

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
	assert.Equal(t, 3, p.Weight())

	_, err = ParsePriority("urgent")
	assert.Equal(t, clierr.InvalidPriority, clierr.CodeOf(err))
}

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"in_progress", "in-progress", "In Progress"} {
		s, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, StatusInProgress, s)
	}
	_, err := ParseStatus("done")
	assert.Equal(t, clierr.InvalidStatus, clierr.CodeOf(err))
}

func TestStatusStepping(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusPending.Next())
	assert.Equal(t, StatusCompleted, StatusInProgress.Next())
	assert.Equal(t, StatusCompleted, StatusCompleted.Next())
	assert.Equal(t, StatusPending, StatusPending.Prev())
}

func TestFieldsValidate(t *testing.T) {
	ok := Fields{Title: "Write report"}.WithDefaults(PriorityMedium, StatusPending)
	assert.NoError(t, ok.Validate())

	blank := ok
	blank.Title = "   "
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(blank.Validate()))

	neg := ok
	n := -5
	neg.EstimatedDuration = &n
	assert.Error(t, neg.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	mins := 30
	orig := &Task{ID: "1", EstimatedDuration: &mins}
	c := orig.Clone()
	*c.EstimatedDuration = 90
	assert.Equal(t, 30, *orig.EstimatedDuration)
}

func TestPatchApply(t *testing.T) {
	mins := 45
	day := date.New(2024, time.March, 1)
	tk := &Task{
		Title:             "Old",
		Description:       "notes",
		Priority:          PriorityLow,
		Status:            StatusPending,
		EstimatedDuration: &mins,
		ScheduledDate:     &day,
	}

	p := Patch{
		Title:             Set("New"),
		Description:       Clear[string](),
		EstimatedDuration: Clear[int](),
		Priority:          Set(PriorityHigh),
	}
	require.NoError(t, p.Validate())
	p.Apply(tk)

	assert.Equal(t, "New", tk.Title)
	assert.Empty(t, tk.Description)
	assert.Nil(t, tk.EstimatedDuration)
	assert.Equal(t, PriorityHigh, tk.Priority)
	assert.Equal(t, &day, tk.ScheduledDate, "untouched fields are kept")
	assert.Equal(t, []string{"title", "description", "priority", "estimated_duration"}, p.Keys())
}

func TestPatchValidate(t *testing.T) {
	assert.Error(t, Patch{Title: Clear[string]()}.Validate())
	assert.Error(t, Patch{Priority: Clear[Priority]()}.Validate())
	assert.Error(t, Patch{Status: Set(Status("archived"))}.Validate())
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{DueDate: Clear[time.Time]()}.IsEmpty())
}

func TestPatchJSON(t *testing.T) {
	p := Patch{
		Status:      Set(StatusInProgress),
		CompletedAt: Clear[time.Time](),
	}
	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"in_progress","completed_at":null}`, string(body))

	var back Patch
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, p, back)

	require.NoError(t, json.Unmarshal([]byte(`{"scheduled_start_time":"09:15","estimated_duration":60}`), &back))
	clock, ok := back.ScheduledStartTime.Value()
	require.True(t, ok)
	assert.Equal(t, "09:15", clock.String())
	assert.False(t, back.Status.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`{"id":"x"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"colour":"red"}`), &back))
}

func TestStampCompletion(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	done := Patch{Status: Set(StatusCompleted)}.StampCompletion(now)
	at, ok := done.CompletedAt.Value()
	require.True(t, ok)
	assert.Equal(t, now, at)

	reopened := Patch{Status: Set(StatusPending)}.StampCompletion(now)
	assert.True(t, reopened.CompletedAt.IsNull())

	untouched := Patch{Title: Set("x")}.StampCompletion(now)
	assert.False(t, untouched.CompletedAt.IsSet())

	f := Fields{Title: "a", Status: StatusCompleted}.StampCompletion(now)
	require.NotNil(t, f.CompletedAt)
	assert.Equal(t, now, *f.CompletedAt)

	f = Fields{Title: "a", Status: StatusPending, CompletedAt: &now}.StampCompletion(now)
	assert.Nil(t, f.CompletedAt)
}
