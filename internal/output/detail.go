package output

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const markdownWrap = 80

// Detail is a task together with its dependency edges.
type Detail struct {
	*task.Task
	Blocked    bool             `json:"blocked"`
	Overdue    bool             `json:"overdue"`
	DependsOn  []board.EdgeView `json:"depends_on"`
	Dependents []board.EdgeView `json:"dependents"`
}

// NewDetail collects the edges touching t from a snapshot.
func NewDetail(t *task.Task, tasks []*task.Task, edges []task.Edge, overdue bool) Detail {
	d := Detail{
		Task:       t,
		Overdue:    overdue,
		DependsOn:  board.DescribeEdges(tasks, board.Prerequisites(edges, t.ID)),
		Dependents: board.DescribeEdges(tasks, board.Dependents(edges, t.ID)),
	}
	for _, e := range d.DependsOn {
		if e.DependsOnStatus != task.StatusCompleted && e.DependsOnTitle != "" {
			d.Blocked = true
			break
		}
	}
	return d
}

// renderMarkdown renders a description for the terminal. Plain text is
// returned when color is disabled or rendering fails.
func renderMarkdown(src string) string {
	if !colorEnabled {
		return src
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}
