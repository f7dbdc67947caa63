package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/planner"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const timestampFormat = "2006-01-02 15:04"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Status colors aligned with TUI column-header palette.
	statusStyles = map[string]lipgloss.Style{
		string(task.StatusPending):    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		string(task.StatusInProgress): lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		string(task.StatusCompleted):  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	// Priority colors matching TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		string(task.PriorityHigh):   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		string(task.PriorityMedium): lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		string(task.PriorityLow):    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	colorEnabled = true
)

// DisableColor strips all styling from output, including rendered markdown.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	blockedStyle = lipgloss.NewStyle()
	errorStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	colorEnabled = false
}

// TaskTable renders a list of tasks as a formatted table. Tasks whose id
// is in blocked get a marker.
func TaskTable(w io.Writer, tasks []*task.Task, blocked map[string]bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, statusW, prioW, titleW, estW, dueW := 4, 8, 10, 5, 5, 12
	for _, t := range tasks {
		idW = max(idW, len(ShortID(t.ID))+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", estW, "EST", dueW, "DUE", "SCHEDULED")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := truncate(t.Title, 48) //nolint:mnd // max title width
		if blocked[t.ID] {
			title = blockedStyle.Render("⛔") + " " + title
		}
		row := fmt.Sprintf("%-*s %s %s %s %s %s %s",
			idW, ShortID(t.ID),
			padRight(styledValue(string(t.Status), statusStyles), statusW),
			padRight(styledValue(string(t.Priority), priorityStyles), prioW),
			padRight(title, titleW),
			padRight(minutesOrDash(t.Minutes()), estW),
			padRight(dueDisplay(t), dueW),
			scheduledDisplay(t))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, d Detail) {
	t := d.Task
	titleLine := fmt.Sprintf("Task %s: %s", ShortID(t.ID), t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	status := styledValue(string(t.Status), statusStyles)
	if d.Blocked {
		status += " " + blockedStyle.Render("(blocked)")
	}
	printField(w, "Status", status)
	printField(w, "Priority", styledValue(string(t.Priority), priorityStyles))
	due := dueDisplay(t)
	if d.Overdue {
		due += " " + blockedStyle.Render("(overdue)")
	}
	printField(w, "Due", due)
	printField(w, "Estimate", minutesOrDash(t.Minutes()))
	printField(w, "Scheduled", scheduledDisplay(t))
	printField(w, "Created", t.CreatedAt.Local().Format(timestampFormat))
	printField(w, "Updated", t.UpdatedAt.Local().Format(timestampFormat))
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.Local().Format(timestampFormat))
		printField(w, "Lead time", FormatDuration(t.CompletedAt.Sub(t.CreatedAt)))
	}

	if len(d.DependsOn) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Depends on"))
		for _, e := range d.DependsOn {
			fmt.Fprintf(w, "  %s %s %s\n", ShortID(e.DependsOnTaskID), e.DependsOnTitle,
				dimStyle.Render("["+string(e.DependsOnStatus)+"]"))
		}
	}
	if len(d.Dependents) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Blocks"))
		for _, e := range d.Dependents {
			fmt.Fprintf(w, "  %s %s\n", ShortID(e.TaskID), e.TaskTitle)
		}
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderMarkdown(t.Description))
	}
}

// StatsLine renders the headline counts on one line.
func StatsLine(w io.Writer, s board.Stats) {
	fmt.Fprintf(w, "Total: %d  Pending: %d  In progress: %d  Completed: %d  High priority: %d\n",
		s.Total, s.Pending, s.InProgress, s.Completed, s.HighPriority)
}

// OverviewTable renders a board summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(s.BoardName))
	StatsLine(w, s.Stats)
	fmt.Fprintln(w)

	header := fmt.Sprintf("%-16s %6s %8s %8s %8s", "STATUS", "COUNT", "BLOCKED", "OVERDUE", "EST")
	fmt.Fprintln(w, headerStyle.Render(header))

	const statusColW = 16
	for _, ss := range s.Statuses {
		fmt.Fprintf(w, "%s %6d %8d %8d %8s\n",
			padRight(styledValue(string(ss.Status), statusStyles), statusColW),
			ss.Count, ss.Blocked, ss.Overdue, minutesOrDash(ss.Minutes))
	}

	fmt.Fprintln(w)
	prioHeader := fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")
	fmt.Fprintln(w, headerStyle.Render(prioHeader))

	const prioColW = 16
	for _, pc := range s.Priorities {
		fmt.Fprintf(w, "%s %6d\n",
			padRight(styledValue(string(pc.Priority), priorityStyles), prioColW), pc.Count)
	}

	fmt.Fprintln(w)
	if s.Next != nil {
		fmt.Fprintf(w, "Next: %s %s %s\n", ShortID(s.Next.ID), s.Next.Title,
			styledValue(string(s.Next.Priority), priorityStyles))
	} else {
		fmt.Fprintln(w, dimStyle.Render("Next: nothing pending"))
	}
}

// GroupedTable renders a grouped board view with per-group status breakdowns.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))

		for _, ss := range g.Statuses {
			if ss.Count == 0 {
				continue
			}
			const groupStatusW = 16
			line := fmt.Sprintf("  %s %d", padRight(styledValue(string(ss.Status), statusStyles), groupStatusW), ss.Count)
			if ss.Blocked > 0 {
				line += " " + blockedStyle.Render("("+strconv.Itoa(ss.Blocked)+" blocked)")
			}
			fmt.Fprintln(w, line)
		}
	}
}

// BlockedTable renders blocked tasks with the titles of their blockers.
func BlockedTable(w io.Writer, blocked []board.BlockedTask) {
	if len(blocked) == 0 {
		fmt.Fprintln(os.Stderr, "No blocked tasks.")
		return
	}
	for _, b := range blocked {
		fmt.Fprintf(w, "%s %s\n", ShortID(b.Task.ID), b.Task.Title)
		fmt.Fprintf(w, "  %s %s\n", blockedStyle.Render("waiting on:"), strings.Join(b.Titles(), ", "))
	}
}

// EdgeTable renders dependency edges.
func EdgeTable(w io.Writer, edges []board.EdgeView) {
	if len(edges) == 0 {
		fmt.Fprintln(os.Stderr, "No dependencies found.")
		return
	}
	header := fmt.Sprintf("%-10s %-30s %-30s %s", "EDGE", "TASK", "DEPENDS ON", "STATUS")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range edges {
		fmt.Fprintf(w, "%-10s %s %s %s\n",
			ShortID(e.ID),
			padRight(truncate(ShortID(e.TaskID)+" "+e.TaskTitle, 30), 30),             //nolint:mnd // column width
			padRight(truncate(ShortID(e.DependsOnTaskID)+" "+e.DependsOnTitle, 30), 30), //nolint:mnd // column width
			styledValue(string(e.DependsOnStatus), statusStyles))
	}
}

// ScheduleTable renders a week view followed by unscheduled tasks.
func ScheduleTable(w io.Writer, days []board.DaySchedule, unscheduled []*task.Task) {
	for _, d := range days {
		label := d.Date.Format("Mon 2006-01-02")
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(label), dimStyle.Render(minutesOrDash(d.TotalMinutes)))
		if len(d.Tasks) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  --"))
			continue
		}
		for _, t := range d.Tasks {
			start := "     "
			if t.ScheduledStartTime != nil {
				start = t.ScheduledStartTime.String()
			}
			fmt.Fprintf(w, "  %s %s %s %s\n", start,
				padRight(styledValue(string(t.Priority), priorityStyles), 7), //nolint:mnd // priority width
				t.Title, dimStyle.Render(minutesOrDash(t.Minutes())))
		}
	}
	if len(unscheduled) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Unscheduled (%d)", len(unscheduled))))
		for _, t := range unscheduled {
			fmt.Fprintf(w, "  %s %s\n", ShortID(t.ID), t.Title)
		}
	}
}

// SuggestionTable renders planner output.
func SuggestionTable(w io.Writer, s []planner.Suggestion) {
	if len(s) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to plan.")
		return
	}
	header := fmt.Sprintf("%-4s %-8s %-6s %s", "#", "PRIORITY", "EST", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for i, x := range s {
		fmt.Fprintf(w, "%-4d %s %-6s %s\n", i+1,
			padRight(styledValue(string(x.Priority), priorityStyles), 8), //nolint:mnd // column width
			minutesOrDash(x.EstimatedDuration), x.Title)
		fmt.Fprintln(w, dimStyle.Render("     "+x.Reasoning))
	}
	fmt.Fprintf(w, "\nTotal estimated time: %s\n", FormatMinutes(planner.TotalMinutes(s)))
}

// ActivityTable renders activity log entries.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s %-14s %s", dimStyle.Render(e.Timestamp.Local().Format(timestampFormat)), e.Action, e.Detail)
		if e.Error != "" {
			line += " " + errorStyle.Render(e.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

// FormatMinutes renders minutes as "45m", "2h" or "1h 30m".
func FormatMinutes(m int) string {
	const perHour = 60
	switch {
	case m < perHour:
		return strconv.Itoa(m) + "m"
	case m%perHour == 0:
		return strconv.Itoa(m/perHour) + "h"
	default:
		return strconv.Itoa(m/perHour) + "h " + strconv.Itoa(m%perHour) + "m"
	}
}

// ShortID abbreviates uuid-style ids to their first eight characters.
// Numeric ids are returned unchanged.
func ShortID(id string) string {
	const short = 8
	if len(id) > short && strings.Contains(id, "-") {
		return id[:short]
	}
	return id
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func minutesOrDash(m int) string {
	if m <= 0 {
		return dimStyle.Render("--")
	}
	return FormatMinutes(m)
}

func dueDisplay(t *task.Task) string {
	if t.DueDate == nil {
		return dimStyle.Render("--")
	}
	return t.DueDate.Local().Format("2006-01-02")
}

func scheduledDisplay(t *task.Task) string {
	if t.ScheduledDate == nil {
		return dimStyle.Render("--")
	}
	s := t.ScheduledDate.String()
	if t.ScheduledStartTime != nil {
		s += " " + t.ScheduledStartTime.String()
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
