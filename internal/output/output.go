// Package output renders tasks, edges and summaries as tables, compact
// lines or JSON.
package output

import (
	"os"
	"strings"
)

// Format is an output format.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatCompact
)

// EnvVar selects the format when no flag is given.
const EnvVar = "TASKDECK_OUTPUT"

var envFormats = map[string]Format{
	"json":    FormatJSON,
	"compact": FormatCompact,
	"oneline": FormatCompact,
	"table":   FormatTable,
}

// Detect picks the format from the global flags, then TASKDECK_OUTPUT,
// falling back to a table.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}
	if f, ok := envFormats[strings.ToLower(os.Getenv(EnvVar))]; ok {
		return f
	}
	return FormatTable
}
