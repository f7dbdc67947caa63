package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// findByID scans tasksDir for the file whose numeric prefix equals id.
// Only canonical ids match: "7" finds 007-x.md, "007" finds nothing.
// It returns "" when no file matches.
func findByID(tasksDir, id string) (string, error) {
	want, err := strconv.Atoi(id)
	if err != nil || want <= 0 || strconv.Itoa(want) != id {
		return "", nil
	}

	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return "", fmt.Errorf("reading tasks directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		dash := strings.IndexByte(name, '-')
		if dash < 1 {
			continue
		}
		if n, err := strconv.Atoi(name[:dash]); err == nil && n == want {
			return filepath.Join(tasksDir, name), nil
		}
	}
	return "", nil
}

// ReadWarning describes a file that could not be parsed during lenient reading.
type ReadWarning struct {
	File string
	Err  error
}

// readAllLenient reads every task file, skipping malformed files instead
// of aborting.
func readAllLenient(tasksDir string) ([]*task.Task, []ReadWarning, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []*task.Task
	var warnings []ReadWarning
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		t, readErr := readTask(filepath.Join(tasksDir, entry.Name()))
		if readErr != nil {
			warnings = append(warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, warnings, nil
}
