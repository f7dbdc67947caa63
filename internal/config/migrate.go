package config

import "fmt"

// migrate upgrades a config from its current version to CurrentVersion.
// Each migration function transforms the config one version forward.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade taskdeck)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}

	return nil
}

// migrations maps each version to the function that migrates it to the next version.
// The migration function must increment cfg.Version after a successful migration.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
}

// migrateV1ToV2 moves the top-level tasks_dir into a file backend section and
// fills the sections that v1 did not have.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = BackendFile
	}
	if cfg.Backend.TasksDir == "" {
		cfg.Backend.TasksDir = cfg.LegacyTasksDir
		if cfg.Backend.TasksDir == "" {
			cfg.Backend.TasksDir = DefaultTasksDir
		}
	}
	cfg.LegacyTasksDir = ""

	if cfg.Defaults.Status == "" {
		cfg.Defaults.Status = DefaultStatus
	}
	if cfg.Defaults.Priority == "" {
		cfg.Defaults.Priority = DefaultPriority
	}
	if cfg.Schedule.WeekStart == "" {
		cfg.Schedule.WeekStart = DefaultWeekStart
	}
	if cfg.Planner.Strategy == "" {
		cfg.Planner = PlannerConfig{Strategy: DefaultPlannerStrategy, Delay: DefaultPlannerDelay}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.TUI.TitleLines == 0 {
		cfg.TUI.TitleLines = DefaultTitleLines
	}
	cfg.Version = 2
	return nil
}
