package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new task board",
	Long: `Creates a board directory with config.yml. The file backend also gets a
tasks/ subdirectory; other backends are configured with --backend and
--dsn or --url.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "board name (defaults to current directory name)")
	initCmd.Flags().String("backend", config.BackendFile, "storage backend (file, sqlite, postgres, rest, memory)")
	initCmd.Flags().String("dsn", "", "database DSN for the sqlite and postgres backends")
	initCmd.Flags().String("url", "", "API base URL for the rest backend")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("backend")
	if kind != config.BackendFile {
		cfg.Backend.Kind = kind
		cfg.Backend.DSN, _ = cmd.Flags().GetString("dsn")
		cfg.Backend.URL, _ = cmd.Flags().GetString("url")
		if err := cfg.Validate(); err != nil {
			_ = os.Remove(cfg.ConfigPath())
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     cfg.Dir(),
			"name":    name,
			"config":  cfg.ConfigPath(),
			"backend": cfg.Backend.Kind,
		})
	}

	output.Messagef(os.Stdout, "Initialized board %q in %s", name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Backend: %s", cfg.Backend.Kind)
	if cfg.Backend.Kind == config.BackendFile {
		output.Messagef(os.Stdout, "  Tasks:   %s", cfg.TasksPath())
	}
	if cfg.Backend.Kind == config.BackendREST {
		output.Messagef(os.Stdout, "  Hint:    put %s=<key> in %s", config.DefaultAPIKeyEnv, cfg.EnvPath())
	}
	return nil
}
