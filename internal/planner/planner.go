// Package planner turns free-text task lines into ordered suggestions.
// Strategies are pluggable; the built-in cycle strategy is a deterministic
// stand-in that assigns priorities and durations by position.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Suggestion is one planned task.
type Suggestion struct {
	Title             string        `json:"title"`
	Priority          task.Priority `json:"priority"`
	EstimatedDuration int           `json:"estimated_duration"`
	Order             int           `json:"order"`
	Reasoning         string        `json:"reasoning"`
}

// Fields converts the suggestion into create input with the given status.
func (s Suggestion) Fields(status task.Status) task.Fields {
	mins := s.EstimatedDuration
	return task.Fields{
		Title:             s.Title,
		Priority:          s.Priority,
		Status:            status,
		EstimatedDuration: &mins,
		Description:       s.Reasoning,
	}
}

// Strategy ranks and estimates task lines.
type Strategy interface {
	Name() string
	Plan(ctx context.Context, lines []string) ([]Suggestion, error)
}

// ParseLines splits text into trimmed, non-blank lines.
func ParseLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// TotalMinutes sums the estimated durations.
func TotalMinutes(s []Suggestion) int {
	total := 0
	for _, x := range s {
		total += x.EstimatedDuration
	}
	return total
}

var (
	cyclePriorities = []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow}
	cycleDurations  = []int{30, 45, 60, 90, 120}
)

// CycleStrategy gives line i the priority High, Medium, Low by i mod 3 and
// a duration from 30, 45, 60, 90, 120 by i mod 5, then orders by priority.
// Delay simulates thinking time and honors cancellation.
type CycleStrategy struct {
	Delay time.Duration
}

// Name implements Strategy.
func (CycleStrategy) Name() string { return "cycle" }

// Plan implements Strategy.
func (c CycleStrategy) Plan(ctx context.Context, lines []string) ([]Suggestion, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	out := make([]Suggestion, 0, len(lines))
	for i, line := range lines {
		p := cyclePriorities[i%len(cyclePriorities)]
		out = append(out, Suggestion{
			Title:             strings.TrimSpace(line),
			Priority:          p,
			EstimatedDuration: cycleDurations[i%len(cycleDurations)],
			Order:             i + 1,
			Reasoning: fmt.Sprintf("This task should be %s priority based on dependencies and urgency patterns.",
				strings.ToLower(string(p))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Weight() > out[j].Priority.Weight()
	})
	return out, nil
}

// Lookup returns the strategy registered under name.
func Lookup(name string, delay time.Duration) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "cycle":
		return CycleStrategy{Delay: delay}, nil
	}
	return nil, fmt.Errorf("unknown planner strategy %q", name)
}
