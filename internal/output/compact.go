package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/planner"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, blocked map[string]bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		line := formatTaskLine(t)
		if blocked[t.ID] {
			line += " blocked"
		}
		fmt.Fprintln(w, line)
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, d Detail) {
	t := d.Task
	line := formatTaskLine(t)
	if d.Blocked {
		line += " blocked"
	}
	fmt.Fprintln(w, line)

	ts := "  created:" + t.CreatedAt.Local().Format("2006-01-02") +
		" updated:" + t.UpdatedAt.Local().Format("2006-01-02")
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.Local().Format("2006-01-02")
	}
	fmt.Fprintln(w, ts)

	if len(d.DependsOn) > 0 {
		ids := make([]string, len(d.DependsOn))
		for i, e := range d.DependsOn {
			ids[i] = "#" + ShortID(e.DependsOnTaskID)
		}
		fmt.Fprintln(w, "  depends-on:"+strings.Join(ids, ","))
	}

	if t.Description != "" {
		for _, bodyLine := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+bodyLine)
		}
	}
}

// OverviewCompact renders a board summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks)\n", s.BoardName, s.Stats.Total)

	for _, ss := range s.Statuses {
		line := "  " + string(ss.Status) + ": " + strconv.Itoa(ss.Count)
		var annotations []string
		if ss.Blocked > 0 {
			annotations = append(annotations, strconv.Itoa(ss.Blocked)+" blocked")
		}
		if ss.Overdue > 0 {
			annotations = append(annotations, strconv.Itoa(ss.Overdue)+" overdue")
		}
		if len(annotations) > 0 {
			line += " (" + strings.Join(annotations, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	if len(s.Priorities) > 0 {
		parts := make([]string, 0, len(s.Priorities))
		for _, pc := range s.Priorities {
			parts = append(parts, string(pc.Priority)+"="+strconv.Itoa(pc.Count))
		}
		fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
	}
	if s.Next != nil {
		fmt.Fprintln(w, "Next: "+formatTaskLine(s.Next))
	}
}

// GroupedCompact renders a grouped view one group per line.
func GroupedCompact(w io.Writer, gs board.GroupedSummary) {
	for _, g := range gs.Groups {
		parts := make([]string, 0, len(g.Statuses))
		for _, ss := range g.Statuses {
			if ss.Count > 0 {
				parts = append(parts, string(ss.Status)+"="+strconv.Itoa(ss.Count))
			}
		}
		fmt.Fprintf(w, "%s (%d) %s\n", g.Key, g.Total, strings.Join(parts, " "))
	}
}

// BlockedCompact renders blocked tasks one per line.
func BlockedCompact(w io.Writer, blocked []board.BlockedTask) {
	for _, b := range blocked {
		fmt.Fprintf(w, "#%s %s <- %s\n", ShortID(b.Task.ID), b.Task.Title, strings.Join(b.Titles(), ", "))
	}
}

// EdgeCompact renders dependency edges one per line.
func EdgeCompact(w io.Writer, edges []board.EdgeView) {
	for _, e := range edges {
		fmt.Fprintf(w, "%s: #%s %s -> #%s %s [%s]\n", ShortID(e.ID),
			ShortID(e.TaskID), e.TaskTitle, ShortID(e.DependsOnTaskID), e.DependsOnTitle, e.DependsOnStatus)
	}
}

// ScheduleCompact renders a week view one day per line.
func ScheduleCompact(w io.Writer, days []board.DaySchedule) {
	for _, d := range days {
		titles := make([]string, len(d.Tasks))
		for i, t := range d.Tasks {
			titles[i] = t.Title
			if t.ScheduledStartTime != nil {
				titles[i] = t.ScheduledStartTime.String() + " " + t.Title
			}
		}
		fmt.Fprintf(w, "%s %dm: %s\n", d.Date.String(), d.TotalMinutes, strings.Join(titles, "; "))
	}
}

// SuggestionCompact renders planner output one suggestion per line.
func SuggestionCompact(w io.Writer, s []planner.Suggestion) {
	for _, x := range s {
		fmt.Fprintf(w, "[%s] %s %dm\n", x.Priority, x.Title, x.EstimatedDuration)
	}
}

// ActivityCompact renders activity entries one per line.
func ActivityCompact(w io.Writer, entries []activity.Entry) {
	for _, e := range entries {
		line := e.Timestamp.UTC().Format("2006-01-02T15:04:05Z") + " " + e.Action + " " + e.Detail
		if e.Error != "" {
			line += " error=" + strconv.Quote(e.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := "#" + ShortID(t.ID) + " [" + string(t.Status) + "/" + string(t.Priority) + "] " + t.Title

	if m := t.Minutes(); m > 0 {
		line += " est:" + FormatMinutes(m)
	}
	if t.DueDate != nil {
		line += " due:" + t.DueDate.Local().Format("2006-01-02")
	}
	if t.ScheduledDate != nil {
		line += " on:" + t.ScheduledDate.String()
	}

	return line
}
