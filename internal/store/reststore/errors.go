package reststore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
)

const maxErrorBody = 64 << 10

// HTTPError is a failed response that maps to no store sentinel or
// taskdeck error code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// errorBody covers both the taskdeck API ({"error","code"}) and PostgREST
// ({"message","code","details","hint"}) error shapes.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	_ = json.Unmarshal(data, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &HTTPError{Status: resp.StatusCode, Code: body.Code, Message: msg}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, msg)
	case body.Code == clierr.Conflict:
		return fmt.Errorf("%w: %s", store.ErrConflict, msg)
	case isTaskdeckCode(body.Code):
		return clierr.New(body.Code, msg)
	}
	return &HTTPError{Status: resp.StatusCode, Code: body.Code, Message: msg}
}

// isTaskdeckCode tells our UPPER_SNAKE codes apart from PostgREST's
// PGRSTnnn and Postgres SQLSTATE codes.
func isTaskdeckCode(code string) bool {
	if code == "" || strings.HasPrefix(code, "PGRST") {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}
