package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"week", "calendar"},
	Short:   "Show the weekly schedule",
	Long: `Shows the seven days of the week containing --date, each with its
scheduled tasks ordered by start time and the total estimated minutes.
Open tasks without a scheduled date are listed after the week.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("date", "today", "any day of the week to show (YYYY-MM-DD, today, tomorrow)")
	scheduleCmd.Flags().String("week-start", "", "first day of the week: monday or sunday (default from config)")
	scheduleCmd.Flags().Bool("no-unscheduled", false, "hide open tasks without a scheduled date")
	rootCmd.AddCommand(scheduleCmd)
}

// scheduleView is the JSON shape of the schedule command.
type scheduleView struct {
	Days        []board.DaySchedule `json:"days"`
	Unscheduled []*task.Task        `json:"unscheduled,omitempty"`
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	anchorArg, _ := cmd.Flags().GetString("date")
	anchor, err := parseScheduled(anchorArg)
	if err != nil {
		return err
	}
	weekStartArg, _ := cmd.Flags().GetString("week-start")
	hideUnscheduled, _ := cmd.Flags().GetBool("no-unscheduled")

	return withRepository(cmd.Context(), func(cfg *config.Config, repo *repository.Repository) error {
		weekStart := cfg.WeekStart()
		switch weekStartArg {
		case "":
		case "monday":
			weekStart = time.Monday
		case "sunday":
			weekStart = time.Sunday
		default:
			return clierr.Newf(clierr.InvalidInput, "invalid --week-start %q: use monday or sunday", weekStartArg)
		}

		snap := repo.Snapshot()
		days := board.Week(snap.Tasks, anchor, weekStart)
		unscheduled := board.Unscheduled(snap.Tasks)
		if hideUnscheduled {
			unscheduled = nil
		}

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, scheduleView{Days: days, Unscheduled: unscheduled})
		case output.FormatCompact:
			output.ScheduleCompact(os.Stdout, days)
		default:
			output.ScheduleTable(os.Stdout, days, unscheduled)
		}
		return nil
	})
}
