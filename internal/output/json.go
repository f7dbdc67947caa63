package output

import (
	"encoding/json"
	"fmt"
	"io"
)

func encoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	if err := encoder(w).Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the error envelope printed in JSON mode. The API server
// answers with the same shape.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes an ErrorResponse. Write failures are ignored.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = encoder(w).Encode(ErrorResponse{Error: msg, Code: code, Details: details})
}

// BatchResult is one entry of a comma-separated batch operation.
type BatchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}
