package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a new task with the given title and optional fields.

Title can be provided as a positional argument or via --title flag.
Description can be provided via --description or --body flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("status", "", "task status (default from config)")
	createCmd.Flags().String("priority", "", "task priority: High, Medium or Low (default from config)")
	createCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "body" {
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
	createCmd.Flags().String("description", "", "task description (markdown)")
	createCmd.Flags().String("due", "", "due date (YYYY-MM-DD or RFC 3339)")
	createCmd.Flags().String("estimate", "", "estimated duration (minutes or e.g. 1h30m)")
	createCmd.Flags().String("scheduled", "", "scheduled date (YYYY-MM-DD, today, tomorrow)")
	createCmd.Flags().String("start", "", "scheduled start time (HH:MM)")
	createCmd.Flags().StringSlice("depends-on", nil, "prerequisite task IDs (comma-separated)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withRepository(ctx, func(cfg *config.Config, repo *repository.Repository) error {
		f, err := createFields(cmd, cfg, title)
		if err != nil {
			return err
		}
		deps, err := resolveDeps(cmd, repo)
		if err != nil {
			return err
		}

		created, err := repo.Create(ctx, f)
		if err != nil {
			return err
		}
		if err := addDeps(ctx, repo, created.ID, deps); err != nil {
			return err
		}
		return outputCreateResult(created, deps)
	})
}

func outputCreateResult(t *task.Task, deps []string) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Created task #%s: %s", output.ShortID(t.ID), t.Title)
	output.Messagef(os.Stdout, "  Status: %s | Priority: %s", t.Status, t.Priority)
	if t.EstimatedDuration != nil {
		output.Messagef(os.Stdout, "  Estimate: %s", output.FormatMinutes(*t.EstimatedDuration))
	}
	if len(deps) > 0 {
		short := make([]string, len(deps))
		for i, d := range deps {
			short[i] = "#" + output.ShortID(d)
		}
		output.Messagef(os.Stdout, "  Depends on: %v", short)
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.InvalidInput,
			"title is required: provide it as an argument or with --title")
	}
}

func createFields(cmd *cobra.Command, cfg *config.Config, title string) (task.Fields, error) {
	f := task.Fields{Title: title}

	if v, _ := cmd.Flags().GetString("status"); v != "" {
		s, err := task.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	f = f.WithDefaults(cfg.DefaultFields())

	f.Description, _ = cmd.Flags().GetString("description")
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := parseDue(v)
		if err != nil {
			return f, err
		}
		f.DueDate = &due
	}
	if v, _ := cmd.Flags().GetString("estimate"); v != "" {
		n, err := parseEstimate(v)
		if err != nil {
			return f, err
		}
		f.EstimatedDuration = &n
	} else if n := cfg.Defaults.EstimatedDuration; n > 0 {
		f.EstimatedDuration = &n
	}
	if v, _ := cmd.Flags().GetString("scheduled"); v != "" {
		d, err := parseScheduled(v)
		if err != nil {
			return f, err
		}
		f.ScheduledDate = &d
	}
	if v, _ := cmd.Flags().GetString("start"); v != "" {
		c, err := parseStart(v)
		if err != nil {
			return f, err
		}
		f.ScheduledStartTime = &c
	}
	return f, nil
}

// resolveDeps turns --depends-on references into full task ids before
// anything is written.
func resolveDeps(cmd *cobra.Command, repo *repository.Repository) ([]string, error) {
	refs, _ := cmd.Flags().GetStringSlice("depends-on")
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		t, err := repo.Resolve(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func addDeps(ctx context.Context, repo *repository.Repository, taskID string, deps []string) error {
	for _, dep := range deps {
		if _, err := repo.AddEdge(ctx, taskID, dep); err != nil {
			return err
		}
	}
	return nil
}
