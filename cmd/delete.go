package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Permanently deletes a task together with every dependency edge that
references it. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if len(refs) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	ctx := cmd.Context()
	return withRepository(ctx, func(_ *config.Config, repo *repository.Repository) error {
		if len(refs) == 1 {
			return deleteSingleTask(ctx, repo, refs[0], yes)
		}
		return runBatch(refs, func(ref string) error {
			t, err := repo.Resolve(ref)
			if err != nil {
				return err
			}
			warnDependents(repo, t)
			return repo.Delete(ctx, t.ID)
		})
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
func deleteSingleTask(ctx context.Context, repo *repository.Repository, ref string, yes bool) error {
	t, err := repo.Resolve(ref)
	if err != nil {
		return err
	}

	warnDependents(repo, t)

	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete task #%s %q? [y/N] ", output.ShortID(t.ID), t.Title)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := repo.Delete(ctx, t.ID); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"status": "deleted",
			"id":     t.ID,
			"title":  t.Title,
		})
	}

	output.Messagef(os.Stdout, "Deleted task #%s: %s", output.ShortID(t.ID), t.Title)
	return nil
}

// warnDependents tells the user which tasks lose a prerequisite.
func warnDependents(repo *repository.Repository, t *task.Task) {
	snap := repo.Snapshot()
	for _, e := range board.DescribeEdges(snap.Tasks, board.Dependents(snap.Edges, t.ID)) {
		fmt.Fprintf(os.Stderr, "Warning: task #%s %q depends on #%s; the dependency will be removed\n",
			output.ShortID(e.TaskID), e.TaskTitle, output.ShortID(t.ID))
	}
}
