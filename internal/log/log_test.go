package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, logrus.WarnLevel, ParseLevel(""))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("verbose"))
}

func TestNewWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "INFO")
	l.WithField("task", "42").Info("created")
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "task=42")
	assert.NotContains(t, out, "hidden")
}
