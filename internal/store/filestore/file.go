package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

const fileMode = 0o600

// readTask parses a task file. The markdown body becomes the description.
func readTask(path string) (*task.Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // task path from trusted board dir
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var t task.Task
	if err := yaml.Unmarshal(fm, &t); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("parsing %s: missing id", path)
	}
	t.Description = body

	return &t, nil
}

// writeTask serializes t as YAML frontmatter followed by its description.
// The description is written verbatim after the closing "---\n".
func writeTask(path string, t *task.Task) error {
	fm, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	buf.WriteString(t.Description)

	return writeFileAtomic(path, buf.Bytes())
}

// writeFileAtomic writes through a temp file so watchers never see a
// half-written task.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
// The file must start with "---\n". Everything after the closing
// "---\n" is the body, unchanged.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[4:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
		idx = len(rest) - len("\n---")
	}

	fm := rest[:idx]
	body := ""
	closingEnd := idx + len("\n---\n")
	if closingEnd < len(rest) {
		body = rest[closingEnd:]
	}

	return []byte(fm), body, nil
}
