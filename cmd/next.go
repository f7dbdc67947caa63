package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the task to work on next",
	Long: `Recommends a pending task: highest priority first, then the earliest due
date. Use --all to see the full ranking and --unblocked to skip tasks that
still wait on a prerequisite.`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	nextCmd.Flags().Bool("all", false, "list every pending task in recommendation order")
	nextCmd.Flags().Bool("unblocked", false, "ignore blocked tasks")
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	unblocked, _ := cmd.Flags().GetBool("unblocked")

	return withRepository(cmd.Context(), func(_ *config.Config, repo *repository.Repository) error {
		snap := repo.Snapshot()
		tasks := snap.Tasks
		if unblocked {
			tasks = board.FilterUnblocked(tasks, snap.Edges)
		}
		blocked := board.BlockedIDs(snap.Tasks, snap.Edges)

		if all {
			return outputTaskList(board.Ranked(tasks), blocked)
		}

		next := board.RecommendNext(tasks)
		if next == nil {
			return clierr.New(clierr.NothingToPick, "no pending tasks")
		}
		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, next)
		case output.FormatCompact:
			output.TaskCompact(os.Stdout, []*task.Task{next}, blocked)
		default:
			output.TaskTable(os.Stdout, []*task.Task{next}, blocked)
		}
		return nil
	})
}
