package task

import (
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
)

// ValidateTitle returns a CLIError for a missing title.
func ValidateTitle() *clierr.Error {
	return clierr.New(clierr.InvalidInput, "title is required")
}

// ValidateStatus returns a CLIError for an unknown status.
func ValidateStatus(status Status) *clierr.Error {
	return clierr.Newf(clierr.InvalidStatus, "invalid status %q", status).
		WithDetails(map[string]any{
			"status":  status,
			"allowed": Statuses,
		})
}

// ValidatePriority returns a CLIError for an unknown priority.
func ValidatePriority(priority Priority) *clierr.Error {
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  Priorities,
		})
}

// ValidateDuration returns a CLIError for a negative estimate.
func ValidateDuration(minutes int) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "estimated duration must be >= 0 (got %d)", minutes).
		WithDetails(map[string]any{"estimated_duration": minutes})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateTime returns a CLIError for invalid clock input.
func ValidateTime(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidTime, "invalid %s: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateSelfReference returns a CLIError for a self-referencing dependency.
func ValidateSelfReference(id string) *clierr.Error {
	return clierr.Newf(clierr.SelfReference, "task cannot depend on itself (%s)", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateDuplicateEdge returns a CLIError for a dependency that already exists.
func ValidateDuplicateEdge(taskID, dependsOnID string) *clierr.Error {
	return clierr.Newf(clierr.DuplicateEdge, "task %s already depends on %s", taskID, dependsOnID).
		WithDetails(map[string]any{
			"task_id":            taskID,
			"depends_on_task_id": dependsOnID,
		})
}

// ValidateCycle returns a CLIError for a dependency that would close a cycle.
func ValidateCycle(taskID, dependsOnID string) *clierr.Error {
	return clierr.Newf(clierr.DependencyCycle,
		"adding %s -> %s would create a dependency cycle", taskID, dependsOnID).
		WithDetails(map[string]any{
			"task_id":            taskID,
			"depends_on_task_id": dependsOnID,
		})
}

// ValidateTaskNotFound returns a CLIError for a task id missing from the snapshot.
func ValidateTaskNotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}
