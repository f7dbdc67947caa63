package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
)

var depsCmd = &cobra.Command{
	Use:     "deps",
	Aliases: []string{"dep"},
	Short:   "Manage task dependencies",
	Long: `A dependency says a task cannot start until its prerequisite is completed.
Tasks with an incomplete prerequisite are blocked.`,
}

var depsAddCmd = &cobra.Command{
	Use:   "add TASK PREREQUISITE",
	Short: "Make TASK depend on PREREQUISITE",
	Args:  cobra.ExactArgs(2), //nolint:mnd // task and prerequisite
	RunE:  runDepsAdd,
}

var depsRemoveCmd = &cobra.Command{
	Use:     "rm TASK PREREQUISITE | rm --edge EDGE_ID",
	Aliases: []string{"remove"},
	Short:   "Remove a dependency",
	Args:    cobra.MaximumNArgs(2), //nolint:mnd // task and prerequisite
	RunE:    runDepsRemove,
}

var depsListCmd = &cobra.Command{
	Use:     "list [TASK]",
	Aliases: []string{"ls"},
	Short:   "List dependencies, optionally only those touching TASK",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runDepsList,
}

var depsBlockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List tasks blocked by an incomplete prerequisite",
	Args:  cobra.NoArgs,
	RunE:  runDepsBlocked,
}

func init() {
	depsRemoveCmd.Flags().String("edge", "", "remove the dependency with this edge ID")
	depsCmd.AddCommand(depsAddCmd, depsRemoveCmd, depsListCmd, depsBlockedCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDepsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withRepository(ctx, func(_ *config.Config, repo *repository.Repository) error {
		t, err := repo.Resolve(args[0])
		if err != nil {
			return err
		}
		dep, err := repo.Resolve(args[1])
		if err != nil {
			return err
		}
		e, err := repo.AddEdge(ctx, t.ID, dep.ID)
		if err != nil {
			return err
		}

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, e)
		}
		output.Messagef(os.Stdout, "Task #%s %q now depends on #%s %q",
			output.ShortID(t.ID), t.Title, output.ShortID(dep.ID), dep.Title)
		return nil
	})
}

func runDepsRemove(cmd *cobra.Command, args []string) error {
	edgeID, _ := cmd.Flags().GetString("edge")
	if (edgeID == "") == (len(args) != 2) { //nolint:mnd // task and prerequisite
		return clierr.New(clierr.InvalidInput, "provide TASK PREREQUISITE or --edge EDGE_ID")
	}

	ctx := cmd.Context()
	return withRepository(ctx, func(_ *config.Config, repo *repository.Repository) error {
		if edgeID == "" {
			t, err := repo.Resolve(args[0])
			if err != nil {
				return err
			}
			dep, err := repo.Resolve(args[1])
			if err != nil {
				return err
			}
			e, ok := findEdge(repo.Snapshot().Edges, t.ID, dep.ID)
			if !ok {
				return clierr.Newf(clierr.EdgeNotFound, "task #%s does not depend on #%s", t.ID, dep.ID).
					WithDetails(map[string]any{"task_id": t.ID, "depends_on_task_id": dep.ID})
			}
			edgeID = e.ID
		}
		if err := repo.RemoveEdge(ctx, edgeID); err != nil {
			return err
		}

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]string{"status": "removed", "id": edgeID})
		}
		output.Messagef(os.Stdout, "Removed dependency %s", output.ShortID(edgeID))
		return nil
	})
}

func runDepsList(cmd *cobra.Command, args []string) error {
	return withRepository(cmd.Context(), func(_ *config.Config, repo *repository.Repository) error {
		snap := repo.Snapshot()
		edges := snap.Edges
		if len(args) == 1 {
			t, err := repo.Resolve(args[0])
			if err != nil {
				return err
			}
			edges = append(board.Prerequisites(snap.Edges, t.ID), board.Dependents(snap.Edges, t.ID)...)
		}
		views := board.DescribeEdges(snap.Tasks, edges)

		switch outputFormat() {
		case output.FormatJSON:
			if views == nil {
				views = []board.EdgeView{}
			}
			return output.JSON(os.Stdout, views)
		case output.FormatCompact:
			output.EdgeCompact(os.Stdout, views)
		default:
			output.EdgeTable(os.Stdout, views)
		}
		return nil
	})
}

func runDepsBlocked(cmd *cobra.Command, _ []string) error {
	return withRepository(cmd.Context(), func(_ *config.Config, repo *repository.Repository) error {
		snap := repo.Snapshot()
		open := board.Filter(snap.Tasks, board.FilterOptions{Status: board.StatusOpen, Priority: board.PriorityAll})
		blocked := board.FindBlockedTasks(open, snap.Edges)

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, blocked)
		case output.FormatCompact:
			output.BlockedCompact(os.Stdout, blocked)
		default:
			output.BlockedTable(os.Stdout, blocked)
		}
		return nil
	})
}
