package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().String("status", "all", "filter by status (all, pending, completed); pending includes in progress")
	listCmd.Flags().String("priority", "all", "filter by priority (all, High, Medium, Low)")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title or description (case-insensitive)")
	listCmd.Flags().String("sort", "created", "sort field ("+strings.Join(board.ValidSortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().Bool("blocked", false, "show only blocked tasks")
	listCmd.Flags().Bool("unblocked", false, "show only tasks whose prerequisites are all completed")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	statusArg, _ := cmd.Flags().GetString("status")
	priorityArg, _ := cmd.Flags().GetString("priority")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	blocked, _ := cmd.Flags().GetBool("blocked")
	unblocked, _ := cmd.Flags().GetBool("unblocked")
	groupBy, _ := cmd.Flags().GetString("group-by")

	status, err := board.ParseStatusFilter(statusArg)
	if err != nil {
		return err
	}
	priority, err := board.ParsePriorityFilter(priorityArg)
	if err != nil {
		return err
	}
	if !slices.Contains(board.ValidSortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.ValidSortFields(), ", "))
	}
	if blocked && unblocked {
		return clierr.New(clierr.InvalidInput, "--blocked and --unblocked are mutually exclusive")
	}
	if groupBy != "" {
		if groupBy, err = board.ParseGroupBy(groupBy); err != nil {
			return err
		}
	}

	return withRepository(cmd.Context(), func(_ *config.Config, repo *repository.Repository) error {
		snap := repo.Snapshot()
		blockedIDs := board.BlockedIDs(snap.Tasks, snap.Edges)

		tasks := board.Filter(snap.Tasks, board.FilterOptions{
			Status:   status,
			Priority: priority,
			Search:   search,
		})
		switch {
		case blocked:
			tasks = slices.DeleteFunc(tasks, func(t *task.Task) bool { return !blockedIDs[t.ID] })
		case unblocked:
			tasks = board.FilterUnblocked(tasks, snap.Edges)
		}
		board.Sort(tasks, sortBy, reverse)
		if limit > 0 && len(tasks) > limit {
			tasks = tasks[:limit]
		}

		if groupBy != "" {
			return outputGroupedList(board.GroupBy(tasks, snap.Edges, groupBy))
		}
		return outputTaskList(tasks, blockedIDs)
	})
}

func outputGroupedList(grouped board.GroupedSummary) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, grouped)
	default:
		output.GroupedTable(os.Stdout, grouped)
	}
	return nil
}

func outputTaskList(tasks []*task.Task, blocked map[string]bool) error {
	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks, blocked)
	default:
		output.TaskTable(os.Stdout, tasks, blocked)
	}
	return nil
}
