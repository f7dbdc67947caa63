package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move ID[,ID,...] [STATUS]",
	Short: "Move a task to a different status",
	Long: `Changes the status of a task. Provide the new status directly
(pending, in_progress, completed), or use --next/--prev to step along the
board. Moving to completed stamps the completion time; moving away clears
it. Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // 1 or 2 positional args
	RunE: runMove,
}

var doneCmd = &cobra.Command{
	Use:   "done ID[,ID,...]",
	Short: "Mark tasks completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(cmd, []string{args[0], string(task.StatusCompleted)})
	},
}

func init() {
	moveCmd.Flags().Bool("next", false, "move to next status")
	moveCmd.Flags().Bool("prev", false, "move to previous status")
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(doneCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}
	next, _ := cmd.Flags().GetBool("next")
	prev, _ := cmd.Flags().GetBool("prev")
	target := ""
	if len(args) == 2 { //nolint:mnd // positional status
		target = args[1]
	}

	ctx := cmd.Context()
	return withRepository(ctx, func(_ *config.Config, repo *repository.Repository) error {
		mv := mover{repo: repo, target: target, next: next, prev: prev}
		if len(refs) == 1 {
			return mv.single(ctx, refs[0])
		}
		return runBatch(refs, func(ref string) error {
			_, _, err := mv.move(ctx, ref)
			return err
		})
	})
}

// moveResult wraps a task with a changed flag for JSON output.
type moveResult struct {
	*task.Task
	Changed bool `json:"changed"`
}

type mover struct {
	repo       *repository.Repository
	target     string
	next, prev bool
}

func (m mover) single(ctx context.Context, ref string) error {
	t, oldStatus, err := m.move(ctx, ref)
	if err != nil {
		return err
	}

	if oldStatus == "" {
		return outputMoveResult(t, false)
	}
	if outputFormat() == output.FormatJSON {
		return outputMoveResult(t, true)
	}
	output.Messagef(os.Stdout, "Moved task #%s: %s -> %s", output.ShortID(t.ID), oldStatus, t.Status)
	return nil
}

// move resolves the target status and applies it. If the task already has
// that status, oldStatus is empty and nothing is written.
func (m mover) move(ctx context.Context, ref string) (*task.Task, task.Status, error) {
	t, err := m.repo.Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	newStatus, err := m.resolveTarget(t)
	if err != nil {
		return nil, "", err
	}
	if t.Status == newStatus {
		return t, "", nil
	}

	if newStatus != task.StatusPending {
		snap := m.repo.Snapshot()
		for _, b := range board.FindBlockedTasks(snap.Tasks, snap.Edges) {
			if b.Task.ID == t.ID {
				fmt.Fprintf(os.Stderr, "Warning: task #%s is blocked by %v\n", output.ShortID(t.ID), b.Titles())
			}
		}
	}

	oldStatus := t.Status
	updated, err := m.repo.SetStatus(ctx, t.ID, newStatus)
	if err != nil {
		return nil, "", err
	}
	return updated, oldStatus, nil
}

func (m mover) resolveTarget(t *task.Task) (task.Status, error) {
	switch {
	case m.target != "":
		return task.ParseStatus(m.target)
	case m.next:
		if t.Status == task.StatusCompleted {
			return "", clierr.Newf(clierr.InvalidStatus, "task #%s is already in the last status", t.ID)
		}
		return t.Status.Next(), nil
	case m.prev:
		if t.Status == task.StatusPending {
			return "", clierr.Newf(clierr.InvalidStatus, "task #%s is already in the first status", t.ID)
		}
		return t.Status.Prev(), nil
	default:
		return "", clierr.New(clierr.InvalidInput, "provide a target status or use --next/--prev")
	}
}

func outputMoveResult(t *task.Task, changed bool) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, moveResult{Task: t, Changed: changed})
	}
	if !changed {
		output.Messagef(os.Stdout, "Task #%s is already %s", output.ShortID(t.ID), t.Status)
	}
	return nil
}
