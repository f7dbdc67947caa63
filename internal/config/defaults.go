// Package config handles taskdeck board configuration.
package config

const (
	// DefaultDir is the default board directory name.
	DefaultDir = ".taskdeck"
	// DefaultTasksDir is the default tasks subdirectory for the file backend.
	DefaultTasksDir = "tasks"
	// DefaultStatus is the default status for new tasks.
	DefaultStatus = "pending"
	// DefaultPriority is the default priority for new tasks.
	DefaultPriority = "Medium"
	// DefaultEstimatedDuration is the default estimate in minutes for new tasks.
	DefaultEstimatedDuration = 60
	// DefaultWeekStart is the first day of the schedule week.
	DefaultWeekStart = "monday"
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2
	// DefaultServerAddr is the listen address for the API server.
	DefaultServerAddr = "127.0.0.1:8080"
	// DefaultPlannerStrategy names the built-in planner.
	DefaultPlannerStrategy = "cycle"
	// DefaultPlannerDelay is the simulated planning time.
	DefaultPlannerDelay = "2s"
	// DefaultAPIKeyEnv names the variable holding the REST backend key.
	DefaultAPIKeyEnv = "TASKDECK_API_KEY"
	// DefaultSQLiteFile is the database file used when a sqlite backend has no dsn.
	DefaultSQLiteFile = "taskdeck.db"

	// ConfigFileName is the name of the config file within the board directory.
	ConfigFileName = "config.yml"
	// EnvFileName holds backend secrets next to the config file.
	EnvFileName = ".env"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2
)

// Backend kinds.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
	BackendMemory   = "memory"
)

// BackendKinds lists the accepted backend.kind values.
var BackendKinds = []string{BackendFile, BackendSQLite, BackendPostgres, BackendREST, BackendMemory}

// WeekStarts lists the accepted schedule.week_start values.
var WeekStarts = []string{"monday", "sunday"}
