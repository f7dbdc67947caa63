package board

import (
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// Blocker is an incomplete prerequisite of a blocked task.
type Blocker struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BlockedTask is a task with at least one incomplete prerequisite.
type BlockedTask struct {
	Task      *task.Task `json:"task"`
	BlockedBy []Blocker  `json:"blocked_by"`
}

// Titles returns the blocker titles in edge order.
func (b BlockedTask) Titles() []string {
	titles := make([]string, len(b.BlockedBy))
	for i, bl := range b.BlockedBy {
		titles[i] = bl.Title
	}
	return titles
}

// FindBlockedTasks returns, in task order, every task that has an edge to
// an existing prerequisite that is not completed. Edges whose prerequisite
// no longer exists are skipped. The check is a single pass, so tasks on a
// cycle simply block each other.
func FindBlockedTasks(tasks []*task.Task, edges []task.Edge) []BlockedTask {
	byID := index(tasks)
	blockers := make(map[string][]Blocker)
	for _, e := range edges {
		dep, ok := byID[e.DependsOnTaskID]
		if !ok || dep.Done() {
			continue
		}
		blockers[e.TaskID] = append(blockers[e.TaskID], Blocker{ID: dep.ID, Title: dep.Title})
	}

	result := make([]BlockedTask, 0, len(blockers))
	for _, t := range tasks {
		if bl, ok := blockers[t.ID]; ok {
			result = append(result, BlockedTask{Task: t, BlockedBy: bl})
		}
	}
	return result
}

// BlockedIDs returns the set of blocked task ids.
func BlockedIDs(tasks []*task.Task, edges []task.Edge) map[string]bool {
	ids := make(map[string]bool)
	for _, b := range FindBlockedTasks(tasks, edges) {
		ids[b.Task.ID] = true
	}
	return ids
}

// FilterUnblocked returns the tasks that are not blocked, in input order.
func FilterUnblocked(tasks []*task.Task, edges []task.Edge) []*task.Task {
	blocked := BlockedIDs(tasks, edges)
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !blocked[t.ID] {
			result = append(result, t)
		}
	}
	return result
}

// Prerequisites returns the edges leaving id.
func Prerequisites(edges []task.Edge, id string) []task.Edge {
	var out []task.Edge
	for _, e := range edges {
		if e.TaskID == id {
			out = append(out, e)
		}
	}
	return out
}

// Dependents returns the edges pointing at id, i.e. the tasks waiting on it.
func Dependents(edges []task.Edge, id string) []task.Edge {
	var out []task.Edge
	for _, e := range edges {
		if e.DependsOnTaskID == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgeView is an edge with the titles of both endpoints resolved.
type EdgeView struct {
	task.Edge
	TaskTitle       string      `json:"task_title"`
	DependsOnTitle  string      `json:"depends_on_title"`
	DependsOnStatus task.Status `json:"depends_on_status"`
}

// DescribeEdges resolves endpoint titles. Endpoints missing from tasks get
// empty titles.
func DescribeEdges(tasks []*task.Task, edges []task.Edge) []EdgeView {
	byID := index(tasks)
	views := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		v := EdgeView{Edge: e}
		if t, ok := byID[e.TaskID]; ok {
			v.TaskTitle = t.Title
		}
		if t, ok := byID[e.DependsOnTaskID]; ok {
			v.DependsOnTitle = t.Title
			v.DependsOnStatus = t.Status
		}
		views = append(views, v)
	}
	return views
}

// WouldCycle reports whether adding the edge taskID -> dependsOnID closes a
// cycle, i.e. whether taskID is already reachable from dependsOnID.
func WouldCycle(edges []task.Edge, taskID, dependsOnID string) bool {
	if taskID == dependsOnID {
		return true
	}
	next := make(map[string][]string)
	for _, e := range edges {
		next[e.TaskID] = append(next[e.TaskID], e.DependsOnTaskID)
	}

	seen := map[string]bool{dependsOnID: true}
	stack := []string{dependsOnID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range next[cur] {
			if n == taskID {
				return true
			}
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

func index(tasks []*task.Task) map[string]*task.Task {
	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID
}
