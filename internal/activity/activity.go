// Package activity keeps an append-only JSONL log of repository notices in
// the board directory.
package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
)

const (
	// FileName is the log file inside the board directory.
	FileName      = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// Entry represents a single activity log entry.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	Detail    string    `json:"detail"`
	Error     string    `json:"error,omitempty"`
}

// Append appends an entry to the log in dir. If the log exceeds
// maxLogEntries, the oldest entries are truncated.
func Append(dir string, entry Entry) error {
	path := filepath.Join(dir, FileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted board dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Best effort; a failed truncation only leaves a longer file.
	_ = truncateIfNeeded(path, maxLogEntries)
	return nil
}

// Read returns up to limit most recent entries, oldest first. limit <= 0
// returns everything. Unparsable lines are skipped.
func Read(dir string, limit int) ([]Entry, error) {
	lines, err := readLines(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if json.Unmarshal([]byte(line), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// truncateIfNeeded rewrites the log keeping only the newest max lines.
func truncateIfNeeded(path string, max int) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= max {
		return nil
	}
	lines = lines[len(lines)-max:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}

// Notifier records every notice in the activity log. Write failures are
// logged and otherwise ignored.
type Notifier struct {
	dir string
	log logrus.FieldLogger
}

// NewNotifier returns a Notifier writing to the log in dir.
func NewNotifier(dir string, l logrus.FieldLogger) *Notifier {
	return &Notifier{dir: dir, log: l}
}

// Notify implements notify.Notifier.
func (n *Notifier) Notify(no notify.Notice) {
	e := Entry{
		Timestamp: no.Time,
		Level:     no.Level.String(),
		Action:    no.Op,
		TaskID:    no.TaskID,
		Detail:    no.Message,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if no.Err != nil {
		e.Error = no.Err.Error()
	}
	if err := Append(n.dir, e); err != nil {
		n.log.WithError(err).Warn("writing activity log")
	}
}
