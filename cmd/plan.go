package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/planner"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var planCmd = &cobra.Command{
	Use:   "plan [LINE...]",
	Short: "Turn a list of tasks into a prioritized plan",
	Long: `Reads one task per line from the arguments, --file, or standard input and
suggests a priority, an estimate and an order for each. With --apply the
suggestions are created as tasks.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringP("file", "f", "", "read task lines from a file (- for stdin)")
	planCmd.Flags().Bool("apply", false, "create the suggested tasks")
	planCmd.Flags().String("strategy", "", "planner strategy (default from config)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lines, err := planInput(cmd, args)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return clierr.New(clierr.InvalidInput, "nothing to plan: provide task lines as arguments, --file or stdin")
	}

	name, _ := cmd.Flags().GetString("strategy")
	if name == "" {
		name = cfg.Planner.Strategy
	}
	strategy, err := planner.Lookup(name, cfg.PlannerDelay())
	if err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "Planning %d tasks...\n", len(lines))
	}
	ctx := cmd.Context()
	suggestions, err := strategy.Plan(ctx, lines)
	if err != nil {
		return err
	}

	if apply, _ := cmd.Flags().GetBool("apply"); apply {
		return applyPlan(cmd, cfg, suggestions)
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, suggestions)
	case output.FormatCompact:
		output.SuggestionCompact(os.Stdout, suggestions)
	default:
		output.SuggestionTable(os.Stdout, suggestions)
	}
	return nil
}

// planInput collects lines from args, --file or piped stdin, in that order.
func planInput(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return planner.ParseLines(strings.Join(args, "\n")), nil
	}

	path, _ := cmd.Flags().GetString("file")
	var r io.Reader
	switch {
	case path == "-":
		r = os.Stdin
	case path != "":
		f, err := os.Open(path) //nolint:gosec // user-supplied input file
		if err != nil {
			return nil, fmt.Errorf("opening plan input: %w", err)
		}
		defer f.Close()
		r = f
	case !term.IsTerminal(int(os.Stdin.Fd())):
		r = os.Stdin
	default:
		return nil, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plan input: %w", err)
	}
	return planner.ParseLines(string(data)), nil
}

func applyPlan(cmd *cobra.Command, cfg *config.Config, suggestions []planner.Suggestion) error {
	ctx := cmd.Context()
	repo, b, err := openRepository(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck // writes are confirmed per call

	_, status := cfg.DefaultFields()
	created := make([]*task.Task, 0, len(suggestions))
	for _, s := range suggestions {
		t, err := repo.Create(ctx, s.Fields(status))
		if err != nil {
			return err
		}
		created = append(created, t)
	}
	return reportApplied(repo, created)
}

func reportApplied(repo *repository.Repository, created []*task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, created)
	}
	snap := repo.Snapshot()
	output.TaskTable(os.Stdout, created, nil)
	output.Messagef(os.Stdout, "Created %d tasks (%d on the board)", len(created), len(snap.Tasks))
	return nil
}
