package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const codeUnauthorized = "UNAUTHORIZED"

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// edgeInput is the body of POST /task_dependencies.
type edgeInput struct {
	TaskID          string `json:"task_id"`
	DependsOnTaskID string `json:"depends_on_task_id"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.fail(c, err, clierr.TaskNotFound)
		return
	}
	if c.Query("order") == "created_at.asc" {
		for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
			tasks[i], tasks[j] = tasks[j], tasks[i]
		}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleInsertTask(c *gin.Context) {
	var f task.Fields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}
	f = f.WithDefaults(task.PriorityMedium, task.StatusPending).StampCompletion(time.Now())

	created, err := s.store.InsertTask(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err, clierr.TaskNotFound)
		return
	}
	c.JSON(http.StatusCreated, []*task.Task{created})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := eqFilter(c, "id")
	if !ok {
		return
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	var p task.Patch
	if err := json.Unmarshal(data, &p); err != nil {
		s.badRequest(c, err)
		return
	}
	if p, err = stampCompletion(p, time.Now()); err != nil {
		s.badRequest(c, err)
		return
	}
	if raw, ok := strings.CutPrefix(c.Query("updated_at"), "eq."); ok {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		p.IfUpdatedAt = &ts
	}

	updated, err := s.store.UpdateTask(c.Request.Context(), id, p)
	if err != nil {
		s.fail(c, err, clierr.TaskNotFound)
		return
	}
	c.JSON(http.StatusOK, []*task.Task{updated})
}

// stampCompletion keeps completed_at set exactly while a task is completed.
// A completed_at sent along with status completed is kept; without a
// status it is rejected.
func stampCompletion(p task.Patch, now time.Time) (task.Patch, error) {
	st, ok := p.Status.Value()
	if !ok {
		if p.CompletedAt.IsSet() {
			return p, clierr.New(clierr.InvalidInput, "completed_at can only change together with status")
		}
		return p, nil
	}
	at, given := p.CompletedAt.Value()
	p = p.StampCompletion(now)
	if st == task.StatusCompleted && given {
		p.CompletedAt = task.Set(at)
	}
	return p, nil
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := eqFilter(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.fail(c, err, clierr.TaskNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListEdges(c *gin.Context) {
	edges, err := s.store.ListEdges(c.Request.Context())
	if err != nil {
		s.fail(c, err, clierr.EdgeNotFound)
		return
	}
	c.JSON(http.StatusOK, edges)
}

func (s *Server) handleInsertEdge(c *gin.Context) {
	var in edgeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}
	if in.TaskID == "" || in.DependsOnTaskID == "" {
		s.badRequest(c, errors.New("task_id and depends_on_task_id are required"))
		return
	}

	s.edgeMu.Lock()
	defer s.edgeMu.Unlock()

	ctx := c.Request.Context()
	edges, err := s.store.ListEdges(ctx)
	if err != nil {
		s.fail(c, err, clierr.EdgeNotFound)
		return
	}
	if in.TaskID != in.DependsOnTaskID && board.WouldCycle(edges, in.TaskID, in.DependsOnTaskID) {
		s.fail(c, task.ValidateCycle(in.TaskID, in.DependsOnTaskID), clierr.EdgeNotFound)
		return
	}

	e, err := s.store.InsertEdge(ctx, in.TaskID, in.DependsOnTaskID)
	if err != nil {
		// A missing endpoint is a missing task, not a missing edge.
		s.fail(c, err, clierr.TaskNotFound)
		return
	}
	c.JSON(http.StatusCreated, []task.Edge{e})
}

func (s *Server) handleDeleteEdge(c *gin.Context) {
	id, ok := eqFilter(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteEdge(c.Request.Context(), id); err != nil {
		s.fail(c, err, clierr.EdgeNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// eqFilter reads a required "col=eq.value" query filter.
func eqFilter(c *gin.Context, col string) (string, bool) {
	v, ok := strings.CutPrefix(c.Query(col), "eq.")
	if !ok || v == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
			Error: "missing filter " + col + "=eq.<value>",
			Code:  clierr.InvalidInput,
		})
		return "", false
	}
	return v, true
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: clierr.InvalidInput})
}

// fail maps a store error to a status code and JSON body. notFoundCode
// names what was missing on this route.
func (s *Server) fail(c *gin.Context, err error, notFoundCode string) {
	status, code := classify(err, notFoundCode)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("store failure")
	}
	c.AbortWithStatusJSON(status, errorBody{Error: err.Error(), Code: code})
}

func classify(err error, notFoundCode string) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, notFoundCode
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, clierr.Conflict
	}
	switch code := clierr.CodeOf(err); code {
	case "":
		return http.StatusInternalServerError, clierr.StoreError
	case clierr.DuplicateEdge, clierr.DependencyCycle, clierr.Conflict:
		return http.StatusConflict, code
	case clierr.TaskNotFound, clierr.EdgeNotFound:
		return http.StatusNotFound, code
	default:
		return http.StatusBadRequest, code
	}
}
