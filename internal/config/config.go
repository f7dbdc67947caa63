package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskdeck board found (run 'taskdeck init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the board configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Board    BoardConfig    `yaml:"board"`
	Backend  BackendConfig  `yaml:"backend"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Planner  PlannerConfig  `yaml:"planner"`
	Server   ServerConfig   `yaml:"server"`
	TUI      TUIConfig      `yaml:"tui,omitempty"`

	// LegacyTasksDir is the top-level tasks_dir of version 1 configs.
	LegacyTasksDir string `yaml:"tasks_dir,omitempty"`

	// dir is the absolute path to the board directory (not serialized).
	dir string `yaml:"-"`
}

// BoardConfig holds board metadata.
type BoardConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// BackendConfig selects and locates the task store.
type BackendConfig struct {
	Kind      string `yaml:"kind"`
	TasksDir  string `yaml:"tasks_dir,omitempty"`
	DSN       string `yaml:"dsn,omitempty"`
	URL       string `yaml:"url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	TokenFile string `yaml:"token_file,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Status            string `yaml:"status"`
	Priority          string `yaml:"priority"`
	EstimatedDuration int    `yaml:"estimated_duration,omitempty"`
}

// ScheduleConfig holds week view settings.
type ScheduleConfig struct {
	WeekStart string `yaml:"week_start"`
}

// PlannerConfig selects the planning strategy.
type PlannerConfig struct {
	Strategy string `yaml:"strategy"`
	Delay    string `yaml:"delay,omitempty"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines   int  `yaml:"title_lines,omitempty"`
	HideComplete bool `yaml:"hide_completed,omitempty"`
}

// Dir returns the absolute path to the board directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the board directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TasksPath returns the absolute path to the file backend's tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.Backend.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// EnvPath returns the absolute path to the board's .env file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.dir, EnvFileName)
}

// NewDefault creates a Config with default values and a file backend.
func NewDefault(name string) *Config {
	return &Config{
		Version: CurrentVersion,
		Board:   BoardConfig{Name: name},
		Backend: BackendConfig{Kind: BackendFile, TasksDir: DefaultTasksDir},
		Defaults: DefaultsConfig{
			Status:            DefaultStatus,
			Priority:          DefaultPriority,
			EstimatedDuration: DefaultEstimatedDuration,
		},
		Schedule: ScheduleConfig{WeekStart: DefaultWeekStart},
		Planner:  PlannerConfig{Strategy: DefaultPlannerStrategy, Delay: DefaultPlannerDelay},
		Server:   ServerConfig{Addr: DefaultServerAddr},
		TUI:      TUIConfig{TitleLines: DefaultTitleLines},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Board.Name == "" {
		return fmt.Errorf("%w: board.name is required", ErrInvalid)
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if _, err := task.ParseStatus(c.Defaults.Status); err != nil {
		return fmt.Errorf("%w: default status %q is not a known status", ErrInvalid, c.Defaults.Status)
	}
	if _, err := task.ParsePriority(c.Defaults.Priority); err != nil {
		return fmt.Errorf("%w: default priority %q is not a known priority", ErrInvalid, c.Defaults.Priority)
	}
	if c.Defaults.EstimatedDuration < 0 {
		return fmt.Errorf("%w: defaults.estimated_duration must be >= 0", ErrInvalid)
	}
	if !contains(WeekStarts, c.Schedule.WeekStart) {
		return fmt.Errorf("%w: schedule.week_start must be one of %s",
			ErrInvalid, strings.Join(WeekStarts, ", "))
	}
	if c.Planner.Delay != "" {
		if _, err := time.ParseDuration(c.Planner.Delay); err != nil {
			return fmt.Errorf("%w: invalid planner.delay %q: %w", ErrInvalid, c.Planner.Delay, err)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d",
			ErrInvalid, minTitleLines, maxTitleLines)
	}
	return nil
}

func (c *Config) validateBackend() error {
	b := c.Backend
	switch b.Kind {
	case BackendFile:
		if b.TasksDir == "" {
			return fmt.Errorf("%w: backend.tasks_dir is required for the file backend", ErrInvalid)
		}
	case BackendPostgres:
		if b.DSN == "" {
			return fmt.Errorf("%w: backend.dsn is required for the postgres backend", ErrInvalid)
		}
	case BackendREST:
		if b.URL == "" {
			return fmt.Errorf("%w: backend.url is required for the rest backend", ErrInvalid)
		}
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: backend.kind %q must be one of %s",
			ErrInvalid, b.Kind, strings.Join(BackendKinds, ", "))
	}
	return nil
}

// DefaultFields returns the create input defaults as typed values.
func (c *Config) DefaultFields() (task.Priority, task.Status) {
	p, err := task.ParsePriority(c.Defaults.Priority)
	if err != nil {
		p = task.PriorityMedium
	}
	s, err := task.ParseStatus(c.Defaults.Status)
	if err != nil {
		s = task.StatusPending
	}
	return p, s
}

// WeekStart returns the configured first weekday.
func (c *Config) WeekStart() time.Weekday {
	if c.Schedule.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// PlannerDelay parses planner.delay. Returns 0 if empty or unparseable.
func (c *Config) PlannerDelay() time.Duration {
	if c.Planner.Delay == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Planner.Delay)
	if err != nil {
		return 0
	}
	return d
}

// DSN returns backend.dsn with environment variables expanded. A sqlite
// backend without a dsn uses a database file in the board directory.
func (c *Config) DSN() string {
	if c.Backend.DSN == "" && c.Backend.Kind == BackendSQLite {
		return filepath.Join(c.dir, DefaultSQLiteFile)
	}
	return os.ExpandEnv(c.Backend.DSN)
}

// BackendAPIKey reads the REST backend key from the configured variable.
func (c *Config) BackendAPIKey() string {
	name := c.Backend.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return os.Getenv(name)
}

// ServerAPIKey reads the API server key. Empty disables authentication.
func (c *Config) ServerAPIKey() string {
	if c.Server.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Server.APIKeyEnv)
}

// TokenPath resolves backend.token_file relative to the board directory.
func (c *Config) TokenPath() string {
	p := c.Backend.TokenFile
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// TitleLines returns the configured number of title lines for TUI cards.
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// Init creates a new board in the given directory with default settings.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.BoardAlreadyExists, "board already exists in %s", absDir)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads, migrates and validates the config in dir, then loads the
// board's .env file into the process environment.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a board directory
// containing config.yml. Returns the absolute path to the board directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the board directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound,
				"no taskdeck board found (run 'taskdeck init' to create one)")
		}
		dir = parent
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
