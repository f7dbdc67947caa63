// Package cmd implements the taskdeck CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/log"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Personal task board with dependencies and a weekly schedule",
	Long: `taskdeck keeps a board of tasks with priorities, due dates, estimates and
dependencies. Run taskdeck without arguments to open the interactive board.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
		if flagVerbose {
			log.SetVerbose()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the board directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	cliErr := toCLIError(err)

	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv(output.EnvVar) == "json"
	}
	if jsonMode {
		output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
		os.Exit(cliErr.ExitCode())
	}

	fmt.Fprintln(os.Stderr, "Error:", cliErr.Message)
	os.Exit(cliErr.ExitCode())
}

// toCLIError maps any command error onto a coded *clierr.Error. Store
// sentinels become their CLI codes; other store failures keep the
// operation in the message.
func toCLIError(err error) *clierr.Error {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var se *store.Error
	hasOp := errors.As(err, &se)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e := clierr.New(clierr.TaskNotFound, err.Error())
		if hasOp && se.Op == store.OpDeleteEdge {
			e.Code = clierr.EdgeNotFound
		}
		if hasOp && se.ID != "" {
			e.Details = map[string]any{"id": se.ID}
		}
		return e
	case errors.Is(err, store.ErrConflict):
		return clierr.New(clierr.Conflict, err.Error())
	case errors.Is(err, config.ErrNotFound):
		return clierr.New(clierr.BoardNotFound, err.Error())
	case errors.Is(err, config.ErrInvalid):
		return clierr.New(clierr.InvalidInput, err.Error())
	case hasOp:
		return clierr.New(clierr.StoreError, err.Error()).
			WithDetails(map[string]any{"op": se.Op})
	}
	return clierr.New(clierr.InternalError, err.Error())
}

// resolveDir returns the board directory: --dir wins, otherwise the
// nearest .taskdeck directory above the working directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err != nil {
		return "", clierr.New(clierr.BoardNotFound,
			"no taskdeck board found (run 'taskdeck init' to create one)")
	}
	return dir, nil
}

// loadConfig finds and loads the board config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// parseRefs splits a comma-separated task reference list, dropping blanks
// and duplicates.
func parseRefs(arg string) ([]string, error) {
	seen := make(map[string]bool)
	var refs []string
	for _, part := range strings.Split(arg, ",") {
		ref := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, clierr.Newf(clierr.InvalidTaskID, "no task ids in %q", arg)
	}
	return refs, nil
}

// runBatch executes fn for each reference and collects results. Returns a
// SilentError with exit code 1 if any operation failed (after outputting
// results).
func runBatch(refs []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(refs))
	anyFailed := false

	for _, ref := range refs {
		if err := fn(ref); err != nil {
			anyFailed = true
			cliErr := toCLIError(err)
			results = append(results, output.BatchResult{ID: ref, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			continue
		}
		results = append(results, output.BatchResult{ID: ref, OK: true})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(refs))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
