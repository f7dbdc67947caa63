package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func TestParseLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, ParseLines("  a \n\n\t\n b c\n"))
	assert.Empty(t, ParseLines("   \n"))
}

func TestCycleStrategy(t *testing.T) {
	lines := []string{"one", "two", "three", "four", "five", "six"}
	got, err := CycleStrategy{}.Plan(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, got, 6)

	titles := make([]string, len(got))
	for i, s := range got {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"one", "four", "two", "five", "three", "six"}, titles)

	assert.Equal(t, Suggestion{
		Title:             "four",
		Priority:          task.PriorityHigh,
		EstimatedDuration: 90,
		Order:             4,
		Reasoning:         "This task should be high priority based on dependencies and urgency patterns.",
	}, got[1])
	assert.Equal(t, 30, got[len(got)-1].EstimatedDuration, "sixth line wraps to the first duration")
	assert.Equal(t, 30+45+60+90+120+30, TotalMinutes(got))
}

func TestCycleStrategyEmpty(t *testing.T) {
	got, err := CycleStrategy{}.Plan(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCycleStrategyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CycleStrategy{Delay: time.Hour}.Plan(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggestionFields(t *testing.T) {
	f := Suggestion{Title: "t", Priority: task.PriorityLow, EstimatedDuration: 45, Reasoning: "r"}.Fields(task.StatusPending)
	require.NoError(t, f.Validate())
	assert.Equal(t, 45, *f.EstimatedDuration)
	assert.Equal(t, "r", f.Description)
}

func TestLookup(t *testing.T) {
	s, err := Lookup("", 0)
	require.NoError(t, err)
	assert.Equal(t, "cycle", s.Name())
	_, err = Lookup("gpt", 0)
	assert.Error(t, err)
}
