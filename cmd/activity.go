package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
)

var activityCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"activity", "history"},
	Short:   "Show recent board activity",
	Long: `Shows the most recent changes made through taskdeck on this machine,
including failed attempts, newest last.`,
	Args: cobra.NoArgs,
	RunE: runActivity,
}

func init() {
	activityCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 for all)") //nolint:mnd // default page
	rootCmd.AddCommand(activityCmd)
}

func runActivity(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := activity.Read(cfg.Dir(), limit)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []activity.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.ActivityCompact(os.Stdout, entries)
	default:
		output.ActivityTable(os.Stdout, entries)
	}
	return nil
}
