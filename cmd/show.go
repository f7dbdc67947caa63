package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long: `Displays full details of a single task including its markdown description
and the tasks it depends on. IDs may be abbreviated to a unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withRepository(cmd.Context(), func(_ *config.Config, repo *repository.Repository) error {
		t, err := repo.Resolve(args[0])
		if err != nil {
			return err
		}
		snap := repo.Snapshot()
		d := output.NewDetail(t, snap.Tasks, snap.Edges, board.Overdue(t, time.Now()))

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, d)
		case output.FormatCompact:
			output.TaskDetailCompact(os.Stdout, d)
		default:
			output.TaskDetail(os.Stdout, d)
		}
		return nil
	})
}
