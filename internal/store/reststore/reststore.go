// Package reststore is a store.Store backed by a hosted PostgREST-style
// API (a Supabase project or `taskdeck serve`). Requests carry the project
// key in the apikey header and an OAuth2 bearer token.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const (
	tasksTable = "tasks"
	edgesTable = "task_dependencies"

	defaultTimeout = 30 * time.Second
)

var errEmptyResponse = errors.New("empty response")

// Store talks to the REST API rooted at base.
type Store struct {
	base      *url.URL
	apiKey    string
	tokens    oauth2.TokenSource
	client    *http.Client
	transport http.RoundTripper
}

// Option configures a Store.
type Option func(*Store)

// WithTransport sets the underlying round tripper (for tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Store) { s.transport = rt }
}

// WithTokenSource authenticates with tokens from ts instead of using the
// API key as the bearer token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(s *Store) { s.tokens = ts }
}

// New returns a Store for the API at baseURL, e.g.
// "https://xyz.supabase.co/rest/v1". apiKey may be empty for an open
// server.
func New(baseURL, apiKey string, opts ...Option) (*Store, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}

	s := &Store{base: u, apiKey: apiKey, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(s)
	}
	if s.tokens == nil && apiKey != "" {
		s.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	}

	var rt http.RoundTripper = &apiKeyTransport{key: apiKey, base: s.transport}
	if s.tokens != nil {
		rt = &oauth2.Transport{Source: s.tokens, Base: rt}
	}
	s.client = &http.Client{Transport: rt, Timeout: defaultTimeout}
	return s, nil
}

// apiKeyTransport adds the apikey header PostgREST gateways expect.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.key == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r)
}

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	var tasks []*task.Task
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if _, err := s.do(ctx, http.MethodGet, tasksTable, q, nil, &tasks); err != nil {
		return nil, store.Wrap(store.OpListTasks, "", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *Store) ListEdges(ctx context.Context) ([]task.Edge, error) {
	var edges []task.Edge
	q := url.Values{"select": {"*"}}
	if _, err := s.do(ctx, http.MethodGet, edgesTable, q, nil, &edges); err != nil {
		return nil, store.Wrap(store.OpListEdges, "", err)
	}
	if edges == nil {
		edges = []task.Edge{}
	}
	return edges, nil
}

func (s *Store) InsertTask(ctx context.Context, f task.Fields) (*task.Task, error) {
	if err := f.Validate(); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	var out []*task.Task
	if _, err := s.do(ctx, http.MethodPost, tasksTable, nil, f, &out); err != nil {
		return nil, store.Wrap(store.OpInsertTask, "", err)
	}
	if len(out) == 0 {
		return nil, store.Wrap(store.OpInsertTask, "", errEmptyResponse)
	}
	return out[0], nil
}

// UpdateTask sends only the touched columns. IfUpdatedAt becomes an extra
// updated_at filter; an empty result then means the record changed.
func (s *Store) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	q := url.Values{"id": {"eq." + id}}
	if p.IfUpdatedAt != nil {
		q.Set("updated_at", "eq."+p.IfUpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	var out []*task.Task
	if _, err := s.do(ctx, http.MethodPatch, tasksTable, q, p, &out); err != nil {
		return nil, store.Wrap(store.OpUpdateTask, id, err)
	}
	if len(out) == 0 {
		if p.IfUpdatedAt != nil {
			return nil, store.Conflict(store.OpUpdateTask, id)
		}
		return nil, store.NotFound(store.OpUpdateTask, id)
	}
	return out[0], nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.deleteRow(ctx, tasksTable, store.OpDeleteTask, id)
}

func (s *Store) InsertEdge(ctx context.Context, taskID, dependsOnID string) (task.Edge, error) {
	if taskID == dependsOnID {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, taskID, task.ValidateSelfReference(taskID))
	}
	body := map[string]string{"task_id": taskID, "depends_on_task_id": dependsOnID}
	var out []task.Edge
	if _, err := s.do(ctx, http.MethodPost, edgesTable, nil, body, &out); err != nil {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", err)
	}
	if len(out) == 0 {
		return task.Edge{}, store.Wrap(store.OpInsertEdge, "", errEmptyResponse)
	}
	return out[0], nil
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	return s.deleteRow(ctx, edgesTable, store.OpDeleteEdge, id)
}

// deleteRow treats an empty representation as not found. A 204 means the
// server confirmed the delete without echoing the row.
func (s *Store) deleteRow(ctx context.Context, table, op, id string) error {
	var out []json.RawMessage
	status, err := s.do(ctx, http.MethodDelete, table, url.Values{"id": {"eq." + id}}, nil, &out)
	if err != nil {
		return store.Wrap(op, id, err)
	}
	if status != http.StatusNoContent && len(out) == 0 {
		return store.NotFound(op, id)
	}
	return nil
}

func (s *Store) do(ctx context.Context, method, table string, q url.Values, body, out any) (int, error) {
	u := s.base.JoinPath(table)
	u.RawQuery = q.Encode()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}
