package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary", "stats"},
	Short:   "Show board summary",
	Long: `Displays a summary of the board: task counts per status, blocked and
overdue counts, priority distribution and the recommended next task.

Use --watch to keep the display live-updating. The board re-renders whenever
the board changes on disk (file and sqlite backends). Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the board on file changes")
	boardCmd.Flags().String("group-by", "", "group board by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" {
		var err error
		if groupBy, err = board.ParseGroupBy(groupBy); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	repo, b, err := openRepository(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck // read-only command

	if err := renderBoard(cfg, repo, groupBy); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}
	if len(b.watch) == 0 {
		return clierr.Newf(clierr.InvalidInput, "--watch is not supported by the %s backend", cfg.Backend.Kind)
	}
	return watchBoard(cfg, repo, b.watch, groupBy)
}

func renderBoard(cfg *config.Config, repo *repository.Repository, groupBy string) error {
	snap := repo.Snapshot()

	if groupBy != "" {
		return outputGroupedList(board.GroupBy(snap.Tasks, snap.Edges, groupBy))
	}

	summary := board.Summary(cfg.Board.Name, snap.Tasks, snap.Edges, time.Now())
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
	default:
		output.OverviewTable(os.Stdout, summary)
	}
	return nil
}

func watchBoard(cfg *config.Config, repo *repository.Repository, paths []string, groupBy string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(paths, func() {
		if loadErr := repo.Load(ctx); loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading board: %v\n", loadErr)
		}
		clearScreen()
		if renderErr := renderBoard(cfg, repo, groupBy); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering board: %v\n", renderErr)
		}
	}, watcher.WithIgnore(watcher.IgnoreBookkeeping))
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
