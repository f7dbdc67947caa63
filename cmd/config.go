package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify board configuration",
	Long: `View the full configuration, get a specific key, or set a writable value.
Secrets are never stored here: the backend and server keys are read from the
environment variables named by backend.api_key_env and server.api_key_env,
which may be set in the board's .env file.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

// stringAccessor is a writable accessor for a plain string field. Range
// and enum checks are left to Config.Validate.
func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func intAccessor(key string, field func(*config.Config) *int) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
			}
			*field(c) = n
			return nil
		},
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	accessors := baseConfigAccessors()
	addBackendConfigAccessors(accessors)
	return accessors
}

func baseConfigAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"board.name":        stringAccessor(func(c *config.Config) *string { return &c.Board.Name }),
		"board.description": stringAccessor(func(c *config.Config) *string { return &c.Board.Description }),
		"statuses": {
			get: func(*config.Config) any { return task.Statuses },
		},
		"priorities": {
			get: func(*config.Config) any { return task.Priorities },
		},
		"defaults.status": {
			get: func(c *config.Config) any { return c.Defaults.Status },
			set: func(c *config.Config, v string) error {
				s, err := task.ParseStatus(v)
				if err != nil {
					return err
				}
				c.Defaults.Status = string(s)
				return nil
			},
			writable: true,
		},
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				p, err := task.ParsePriority(v)
				if err != nil {
					return err
				}
				c.Defaults.Priority = string(p)
				return nil
			},
			writable: true,
		},
		"defaults.estimated_duration": intAccessor("defaults.estimated_duration",
			func(c *config.Config) *int { return &c.Defaults.EstimatedDuration }),
		"schedule.week_start": {
			get: func(c *config.Config) any { return c.Schedule.WeekStart },
			set: func(c *config.Config, v string) error {
				c.Schedule.WeekStart = strings.ToLower(v)
				return nil
			},
			writable: true,
		},
		"planner.strategy": stringAccessor(func(c *config.Config) *string { return &c.Planner.Strategy }),
		"planner.delay":    stringAccessor(func(c *config.Config) *string { return &c.Planner.Delay }),
		"tui.title_lines":  intAccessor("tui.title_lines", func(c *config.Config) *int { return &c.TUI.TitleLines }),
		"tui.hide_completed": {
			get: func(c *config.Config) any { return c.TUI.HideComplete },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid tui.hide_completed %q: must be true or false", v)
				}
				c.TUI.HideComplete = b
				return nil
			},
			writable: true,
		},
	}
}

func addBackendConfigAccessors(accessors map[string]configAccessor) {
	accessors["backend.kind"] = configAccessor{
		get: func(c *config.Config) any { return c.Backend.Kind },
	}
	accessors["backend.tasks_dir"] = configAccessor{
		get: func(c *config.Config) any { return c.Backend.TasksDir },
	}
	accessors["backend.dsn"] = stringAccessor(func(c *config.Config) *string { return &c.Backend.DSN })
	accessors["backend.url"] = stringAccessor(func(c *config.Config) *string { return &c.Backend.URL })
	accessors["backend.api_key_env"] = stringAccessor(func(c *config.Config) *string { return &c.Backend.APIKeyEnv })
	accessors["backend.token_file"] = stringAccessor(func(c *config.Config) *string { return &c.Backend.TokenFile })
	accessors["server.addr"] = stringAccessor(func(c *config.Config) *string { return &c.Server.Addr })
	accessors["server.api_key_env"] = stringAccessor(func(c *config.Config) *string { return &c.Server.APIKeyEnv })
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"board.name",
		"board.description",
		"backend.kind",
		"backend.tasks_dir",
		"backend.dsn",
		"backend.url",
		"backend.api_key_env",
		"backend.token_file",
		"statuses",
		"priorities",
		"defaults.status",
		"defaults.priority",
		"defaults.estimated_duration",
		"schedule.week_start",
		"planner.strategy",
		"planner.delay",
		"server.addr",
		"server.api_key_env",
		"tui.title_lines",
		"tui.hide_completed",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-28s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []task.Status:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = string(s)
		}
		return strings.Join(parts, ", ")
	case []task.Priority:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = string(p)
		}
		return strings.Join(parts, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
