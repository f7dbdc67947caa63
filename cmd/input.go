package cmd

import (
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const (
	endOfDayHour   = 23
	endOfDayMinute = 59
)

// parseDue accepts an RFC 3339 timestamp or a bare YYYY-MM-DD, which
// means the end of that day in local time.
func parseDue(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, task.ValidateDate("due date", s, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), endOfDayHour, endOfDayMinute, 0, 0, time.Local), nil
}

// parseScheduled accepts YYYY-MM-DD plus the shortcuts "today" and
// "tomorrow".
func parseScheduled(s string) (date.Date, error) {
	switch s {
	case "today":
		return date.Today(), nil
	case "tomorrow":
		return date.Today().AddDays(1), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, task.ValidateDate("scheduled date", s, err)
	}
	return d, nil
}

func parseStart(s string) (date.Clock, error) {
	c, err := date.ParseClock(s)
	if err != nil {
		return date.Clock{}, task.ValidateTime("start time", s, err)
	}
	return c, nil
}

// parseEstimate accepts whole minutes ("90") or a Go duration ("1h30m").
func parseEstimate(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, task.ValidateDuration(n)
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, clierr.Newf(clierr.InvalidInput, "invalid estimate %q: use minutes or a duration like 1h30m", s)
	}
	if d < 0 {
		return 0, task.ValidateDuration(int(d.Minutes()))
	}
	return int(d.Round(time.Minute).Minutes()), nil
}
