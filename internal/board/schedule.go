package board

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// DaysPerWeek is the length of the schedule view.
const DaysPerWeek = 7

// TasksForDay returns the tasks scheduled on day, in input order.
func TasksForDay(tasks []*task.Task, day date.Date) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if t.ScheduledDate != nil && t.ScheduledDate.SameDay(day) {
			out = append(out, t)
		}
	}
	return out
}

// TotalMinutesForDay sums the estimated durations of the tasks scheduled on
// day. Tasks without an estimate count as zero.
func TotalMinutesForDay(tasks []*task.Task, day date.Date) int {
	total := 0
	for _, t := range TasksForDay(tasks, day) {
		total += t.Minutes()
	}
	return total
}

// DaySchedule is one column of the week view.
type DaySchedule struct {
	Date         date.Date    `json:"date"`
	Tasks        []*task.Task `json:"tasks"`
	TotalMinutes int          `json:"total_minutes"`
}

// Week returns the seven days of the week containing anchor, starting on
// weekStart. Tasks within a day are ordered by start time; untimed tasks
// come last in input order.
func Week(tasks []*task.Task, anchor date.Date, weekStart time.Weekday) []DaySchedule {
	first := anchor.StartOfWeek(weekStart)
	days := make([]DaySchedule, DaysPerWeek)
	for i := range days {
		day := first.AddDays(i)
		dayTasks := TasksForDay(tasks, day)
		sort.SliceStable(dayTasks, func(a, b int) bool {
			sa, sb := dayTasks[a].ScheduledStartTime, dayTasks[b].ScheduledStartTime
			switch {
			case sa == nil:
				return false
			case sb == nil:
				return true
			default:
				return sa.Before(*sb)
			}
		})
		if dayTasks == nil {
			dayTasks = []*task.Task{}
		}
		days[i] = DaySchedule{
			Date:         day,
			Tasks:        dayTasks,
			TotalMinutes: TotalMinutesForDay(tasks, day),
		}
	}
	return days
}

// Unscheduled returns open tasks without a scheduled date.
func Unscheduled(tasks []*task.Task) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if t.ScheduledDate == nil && !t.Done() {
			out = append(out, t)
		}
	}
	return out
}
