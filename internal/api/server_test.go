package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/memstore"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	return NewServer(memstore.New(), append([]Option{WithLogger(logger)}, opts...)...)
}

func do(t *testing.T, s *Server, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func createTask(t *testing.T, s *Server, title string) *task.Task {
	t.Helper()
	w := do(t, s, http.MethodPost, BasePath+"/tasks", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	return out[0]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, WithAPIKey("secret"))
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, WithAPIKey("secret"))

	w := do(t, s, http.MethodGet, BasePath+"/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, codeUnauthorized, decodeError(t, w).Code)

	w = do(t, s, http.MethodGet, BasePath+"/tasks", nil, "apikey", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodGet, BasePath+"/tasks", nil, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInsertTaskAppliesDefaults(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Write docs")
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, task.StatusPending, created.Status)

	w := do(t, s, http.MethodPost, BasePath+"/tasks", map[string]any{"title": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, clierr.InvalidInput, decodeError(t, w).Code)

	w = do(t, s, http.MethodPost, BasePath+"/tasks", map[string]any{"title": "x", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, clierr.InvalidPriority, decodeError(t, w).Code)
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Draft")

	w := do(t, s, http.MethodPatch, BasePath+"/tasks?id=eq."+created.ID,
		map[string]any{"status": "completed", "estimated_duration": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, task.StatusCompleted, out[0].Status)
	assert.Equal(t, 30, out[0].Minutes())

	w = do(t, s, http.MethodPatch, BasePath+"/tasks?id=eq."+created.ID, map[string]any{"id": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPatch, BasePath+"/tasks?id=eq.missing", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, clierr.TaskNotFound, decodeError(t, w).Code)

	w = do(t, s, http.MethodPatch, BasePath+"/tasks", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPatch,
		BasePath+"/tasks?id=eq."+created.ID+"&updated_at=eq.2001-01-01T00:00:00Z", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, clierr.Conflict, decodeError(t, w).Code)
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) *task.Task {
	t.Helper()
	var out []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	return out[0]
}

func TestInsertTaskStampsCompletion(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, BasePath+"/tasks", map[string]any{"title": "done already", "status": "completed"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotNil(t, decodeTask(t, w).CompletedAt)

	w = do(t, s, http.MethodPost, BasePath+"/tasks",
		map[string]any{"title": "open", "status": "pending", "completed_at": "2024-01-01T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Nil(t, decodeTask(t, w).CompletedAt)
}

func TestUpdateTaskKeepsCompletionInStep(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Ship it")
	path := BasePath + "/tasks?id=eq." + created.ID

	w := do(t, s, http.MethodPatch, path, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decodeTask(t, w).CompletedAt)

	w = do(t, s, http.MethodPatch, path, map[string]any{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decodeTask(t, w).CompletedAt)

	w = do(t, s, http.MethodPatch, path, map[string]any{"status": "pending", "completed_at": "2024-01-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decodeTask(t, w).CompletedAt)

	w = do(t, s, http.MethodPatch, path, map[string]any{"status": "completed", "completed_at": "2024-01-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decodeTask(t, w)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, 2024, done.CompletedAt.Year())

	w = do(t, s, http.MethodPatch, path, map[string]any{"completed_at": nil})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, clierr.InvalidInput, decodeError(t, w).Code)

	w = do(t, s, http.MethodGet, BasePath+"/tasks", nil)
	var tasks []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.NotNil(t, tasks[0].CompletedAt, "rejected patch left the task untouched")
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Temp")

	w := do(t, s, http.MethodDelete, BasePath+"/tasks?id=eq."+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, BasePath+"/tasks?id=eq."+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEdges(t *testing.T) {
	s := newTestServer(t)
	a := createTask(t, s, "A")
	b := createTask(t, s, "B")
	path := BasePath + "/task_dependencies"

	w := do(t, s, http.MethodPost, path, edgeInput{TaskID: a.ID, DependsOnTaskID: b.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []task.Edge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, s, http.MethodPost, path, edgeInput{TaskID: a.ID, DependsOnTaskID: b.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, clierr.DuplicateEdge, decodeError(t, w).Code)

	w = do(t, s, http.MethodPost, path, edgeInput{TaskID: b.ID, DependsOnTaskID: a.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, clierr.DependencyCycle, decodeError(t, w).Code)

	w = do(t, s, http.MethodPost, path, edgeInput{TaskID: a.ID, DependsOnTaskID: a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, clierr.SelfReference, decodeError(t, w).Code)

	w = do(t, s, http.MethodPost, path, edgeInput{TaskID: a.ID, DependsOnTaskID: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, clierr.TaskNotFound, decodeError(t, w).Code)

	w = do(t, s, http.MethodGet, path, nil)
	var edges []task.Edge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edges))
	assert.Len(t, edges, 1)

	w = do(t, s, http.MethodDelete, path+"?id=eq."+created[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, path+"?id=eq."+created[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, clierr.EdgeNotFound, decodeError(t, w).Code)
}

func TestListOrder(t *testing.T) {
	s := newTestServer(t)
	first := createTask(t, s, "first")

	w := do(t, s, http.MethodGet, BasePath+"/tasks?order=created_at.desc", nil)
	var tasks []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].ID)
}
