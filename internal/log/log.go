// Package log holds the process-wide logrus logger. The level comes from
// LOG_LEVEL (DEBUG, INFO, WARN or ERROR) and defaults to WARN so command
// output stays clean; logs always go to stderr.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = New(os.Stderr, os.Getenv("LOG_LEVEL"))
}

// New builds a logger writing text with full timestamps to w.
func New(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// ParseLevel maps a LOG_LEVEL value to a logrus level. Unknown values
// fall back to WARN.
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// GetLogger returns the shared logger instance.
func GetLogger() *logrus.Logger {
	return logger
}

// SetVerbose lowers the shared logger to DEBUG.
func SetVerbose() {
	logger.SetLevel(logrus.DebugLevel)
}
