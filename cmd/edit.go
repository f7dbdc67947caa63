package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
Multiple IDs can be provided as a comma-separated list.

With --strict the update only succeeds if nobody changed the task since it
was loaded; otherwise the last write wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("status", "", "new status")
	editCmd.Flags().String("priority", "", "new priority")
	editCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "body":
			name = "description"
		case "append-body":
			name = "append"
		}
		return pflag.NormalizedName(name)
	})
	editCmd.Flags().String("description", "", "new description (replaces the whole text)")
	editCmd.Flags().StringP("append", "a", "", "append text to the description")
	editCmd.Flags().BoolP("timestamp", "t", false, "prefix a timestamp line when appending")
	editCmd.Flags().String("due", "", "new due date (YYYY-MM-DD or RFC 3339)")
	editCmd.Flags().Bool("clear-due", false, "clear due date")
	editCmd.Flags().String("estimate", "", "new estimated duration (minutes or e.g. 1h30m)")
	editCmd.Flags().Bool("clear-estimate", false, "clear estimated duration")
	editCmd.Flags().String("scheduled", "", "new scheduled date (YYYY-MM-DD, today, tomorrow)")
	editCmd.Flags().Bool("clear-scheduled", false, "clear scheduled date and start time")
	editCmd.Flags().String("start", "", "new scheduled start time (HH:MM)")
	editCmd.Flags().Bool("clear-start", false, "clear scheduled start time")
	editCmd.Flags().StringSlice("add-dep", nil, "add prerequisite task IDs")
	editCmd.Flags().StringSlice("remove-dep", nil, "remove prerequisite task IDs")
	editCmd.Flags().Bool("strict", false, "fail if the task changed since it was loaded")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withRepository(ctx, func(_ *config.Config, repo *repository.Repository) error {
		if len(refs) == 1 {
			t, err := executeEdit(ctx, repo, cmd, refs[0])
			if err != nil {
				return err
			}
			if outputFormat() == output.FormatJSON {
				return output.JSON(os.Stdout, t)
			}
			output.Messagef(os.Stdout, "Updated task #%s: %s", output.ShortID(t.ID), t.Title)
			return nil
		}
		return runBatch(refs, func(ref string) error {
			_, err := executeEdit(ctx, repo, cmd, ref)
			return err
		})
	})
}

// executeEdit applies field flags and dependency changes to one task.
func executeEdit(ctx context.Context, repo *repository.Repository, cmd *cobra.Command, ref string) (*task.Task, error) {
	t, err := repo.Resolve(ref)
	if err != nil {
		return nil, err
	}

	p, err := editPatch(cmd, t)
	if err != nil {
		return nil, err
	}
	addRefs, _ := cmd.Flags().GetStringSlice("add-dep")
	removeRefs, _ := cmd.Flags().GetStringSlice("remove-dep")
	if p.IsEmpty() && len(addRefs) == 0 && len(removeRefs) == 0 {
		return nil, clierr.New(clierr.NoChanges, "no changes specified")
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		at := t.UpdatedAt
		p.IfUpdatedAt = &at
	}

	if !p.IsEmpty() {
		if t, err = repo.Update(ctx, t.ID, p); err != nil {
			return nil, err
		}
	}
	if err := editDeps(ctx, repo, t.ID, addRefs, removeRefs); err != nil {
		return nil, err
	}
	return t, nil
}

func editPatch(cmd *cobra.Command, t *task.Task) (task.Patch, error) {
	var p task.Patch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		p.Title = task.Set(v)
	}
	if v, _ := flags.GetString("status"); v != "" {
		s, err := task.ParseStatus(v)
		if err != nil {
			return p, err
		}
		if s != t.Status {
			p.Status = task.Set(s)
		}
	}
	if v, _ := flags.GetString("priority"); v != "" {
		pr, err := task.ParsePriority(v)
		if err != nil {
			return p, err
		}
		p.Priority = task.Set(pr)
	}

	if err := descriptionPatch(cmd, t, &p); err != nil {
		return p, err
	}
	if err := schedulePatch(cmd, &p); err != nil {
		return p, err
	}
	return p, nil
}

func descriptionPatch(cmd *cobra.Command, t *task.Task, p *task.Patch) error {
	flags := cmd.Flags()
	replace := flags.Changed("description")
	appendText, _ := flags.GetString("append")
	if replace && appendText != "" {
		return clierr.New(clierr.InvalidInput, "--description and --append are mutually exclusive")
	}

	switch {
	case replace:
		v, _ := flags.GetString("description")
		if v == "" {
			p.Description = task.Clear[string]()
		} else {
			p.Description = task.Set(v)
		}
	case appendText != "":
		if stamp, _ := flags.GetBool("timestamp"); stamp {
			appendText = "[" + time.Now().Format("2006-01-02 15:04") + "] " + appendText
		}
		desc := t.Description
		if desc != "" && !strings.HasSuffix(desc, "\n") {
			desc += "\n"
		}
		p.Description = task.Set(desc + appendText)
	}
	return nil
}

func schedulePatch(cmd *cobra.Command, p *task.Patch) error {
	flags := cmd.Flags()

	if unset, _ := flags.GetBool("clear-due"); unset {
		p.DueDate = task.Clear[time.Time]()
	} else if v, _ := flags.GetString("due"); v != "" {
		due, err := parseDue(v)
		if err != nil {
			return err
		}
		p.DueDate = task.Set(due)
	}

	if unset, _ := flags.GetBool("clear-estimate"); unset {
		p.EstimatedDuration = task.Clear[int]()
	} else if v, _ := flags.GetString("estimate"); v != "" {
		n, err := parseEstimate(v)
		if err != nil {
			return err
		}
		p.EstimatedDuration = task.Set(n)
	}

	if unset, _ := flags.GetBool("clear-scheduled"); unset {
		p.ScheduledDate = task.Clear[date.Date]()
		p.ScheduledStartTime = task.Clear[date.Clock]()
		return nil
	}
	if v, _ := flags.GetString("scheduled"); v != "" {
		d, err := parseScheduled(v)
		if err != nil {
			return err
		}
		p.ScheduledDate = task.Set(d)
	}
	if unset, _ := flags.GetBool("clear-start"); unset {
		p.ScheduledStartTime = task.Clear[date.Clock]()
	} else if v, _ := flags.GetString("start"); v != "" {
		c, err := parseStart(v)
		if err != nil {
			return err
		}
		p.ScheduledStartTime = task.Set(c)
	}
	return nil
}

// editDeps adds and removes prerequisite edges of taskID.
func editDeps(ctx context.Context, repo *repository.Repository, taskID string, add, remove []string) error {
	for _, ref := range add {
		dep, err := repo.Resolve(ref)
		if err != nil {
			return err
		}
		if _, err := repo.AddEdge(ctx, taskID, dep.ID); err != nil {
			return err
		}
	}
	for _, ref := range remove {
		dep, err := repo.Resolve(ref)
		if err != nil {
			return err
		}
		edge, ok := findEdge(repo.Snapshot().Edges, taskID, dep.ID)
		if !ok {
			return clierr.Newf(clierr.EdgeNotFound, "task #%s does not depend on #%s", taskID, dep.ID)
		}
		if err := repo.RemoveEdge(ctx, edge.ID); err != nil {
			return err
		}
	}
	return nil
}

func findEdge(edges []task.Edge, taskID, dependsOnID string) (task.Edge, bool) {
	for _, e := range edges {
		if e.TaskID == taskID && e.DependsOnTaskID == dependsOnID {
			return e, true
		}
	}
	return task.Edge{}, false
}
