package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "Home")
	require.NoError(t, err)
	assert.DirExists(t, cfg.TasksPath())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Home", loaded.Board.Name)
	assert.Equal(t, BackendFile, loaded.Backend.Kind)
	assert.Equal(t, time.Monday, loaded.WeekStart())
	assert.Equal(t, 2*time.Second, loaded.PlannerDelay())

	p, s := loaded.DefaultFields()
	assert.Equal(t, task.PriorityMedium, p)
	assert.Equal(t, task.StatusPending, s)
}

func TestInitTwice(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, "a")
	require.NoError(t, err)

	_, err = Init(dir, "b")
	assert.Equal(t, clierr.BoardAlreadyExists, clierr.CodeOf(err))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no name", func(c *Config) { c.Board.Name = "" }},
		{"bad kind", func(c *Config) { c.Backend.Kind = "mongo" }},
		{"file without dir", func(c *Config) { c.Backend.TasksDir = "" }},
		{"postgres without dsn", func(c *Config) { c.Backend.Kind = BackendPostgres }},
		{"rest without url", func(c *Config) { c.Backend.Kind = BackendREST }},
		{"bad status", func(c *Config) { c.Defaults.Status = "blocked" }},
		{"bad priority", func(c *Config) { c.Defaults.Priority = "urgent" }},
		{"negative duration", func(c *Config) { c.Defaults.EstimatedDuration = -1 }},
		{"bad week start", func(c *Config) { c.Schedule.WeekStart = "friday" }},
		{"bad delay", func(c *Config) { c.Planner.Delay = "soon" }},
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
		{"title lines", func(c *Config) { c.TUI.TitleLines = 9 }},
		{"version", func(c *Config) { c.Version = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault("b")
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}

	cfg := NewDefault("b")
	cfg.Backend = BackendConfig{Kind: BackendSQLite}
	assert.NoError(t, cfg.Validate())
}

func TestMigrateV1(t *testing.T) {
	dir := t.TempDir()
	v1 := "version: 1\nboard:\n  name: Old\ntasks_dir: items\ndefaults:\n  status: pending\n  priority: High\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, BackendConfig{Kind: BackendFile, TasksDir: "items"}, cfg.Backend)
	assert.Empty(t, cfg.LegacyTasksDir)
	assert.Equal(t, "High", cfg.Defaults.Priority)
	assert.Equal(t, DefaultWeekStart, cfg.Schedule.WeekStart)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 2")
	assert.NotContains(t, string(data), "\ntasks_dir: items")
}

func TestMigrateNewer(t *testing.T) {
	cfg := &Config{Version: CurrentVersion + 1}
	assert.ErrorIs(t, migrate(cfg), ErrInvalid)
	assert.ErrorIs(t, migrate(&Config{Version: 0}), ErrInvalid)
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	_, err := Init(filepath.Join(root, DefaultDir), "b")
	require.NoError(t, err)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	found, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultDir), found)

	found, err = FindDir(filepath.Join(root, DefaultDir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultDir), found)
}

func TestEnvAndSecrets(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Init(dir, "b")
	require.NoError(t, err)
	cfg.Backend = BackendConfig{Kind: BackendPostgres, DSN: "postgres://u:${TASKDECK_TEST_PW}@db/tasks"}
	cfg.Server.APIKeyEnv = "TASKDECK_TEST_SERVER_KEY"
	require.NoError(t, cfg.Save())
	env := "TASKDECK_TEST_PW=s3cret\nTASKDECK_TEST_SERVER_KEY=srv\nTASKDECK_API_KEY=rest\n"
	require.NoError(t, os.WriteFile(cfg.EnvPath(), []byte(env), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"TASKDECK_TEST_PW", "TASKDECK_TEST_SERVER_KEY", "TASKDECK_API_KEY"} {
			os.Unsetenv(k) //nolint:errcheck
		}
	})

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:s3cret@db/tasks", loaded.DSN())
	assert.Equal(t, "srv", loaded.ServerAPIKey())
	assert.Equal(t, "rest", loaded.BackendAPIKey())
}

func TestSQLiteDefaultDSN(t *testing.T) {
	cfg := NewDefault("b")
	cfg.SetDir("/boards/x")
	cfg.Backend = BackendConfig{Kind: BackendSQLite}
	assert.Equal(t, filepath.Join("/boards/x", DefaultSQLiteFile), cfg.DSN())

	cfg.Backend.TokenFile = "token.json"
	assert.Equal(t, filepath.Join("/boards/x", "token.json"), cfg.TokenPath())
}
