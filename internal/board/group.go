package board

import (
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key      string          `json:"key"`
	Statuses []StatusSummary `json:"statuses"`
	Total    int             `json:"total"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldPriority, fieldStatus}
}

// ParseGroupBy validates a --group-by value.
func ParseGroupBy(field string) (string, error) {
	for _, f := range ValidGroupByFields() {
		if f == field {
			return f, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
		WithDetails(map[string]any{"field": field, "allowed": ValidGroupByFields()})
}

// GroupBy groups tasks by priority or status. Every known key gets a group,
// even when empty, in priority or board order.
func GroupBy(tasks []*task.Task, edges []task.Edge, field string) GroupedSummary {
	var keys []string
	keyOf := func(t *task.Task) string { return string(t.Status) }
	if field == fieldPriority {
		for _, p := range task.Priorities {
			keys = append(keys, string(p))
		}
		keyOf = func(t *task.Task) string { return string(t.Priority) }
	} else {
		for _, s := range task.Statuses {
			keys = append(keys, string(s))
		}
	}

	groups := make(map[string][]*task.Task, len(keys))
	for _, t := range tasks {
		k := keyOf(t)
		groups[k] = append(groups[k], t)
	}

	blocked := BlockedIDs(tasks, edges)
	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(keys))}
	for _, k := range keys {
		result.Groups = append(result.Groups, GroupSummary{
			Key:      k,
			Statuses: statusSummaries(groups[k], blocked, nil),
			Total:    len(groups[k]),
		})
	}
	return result
}
