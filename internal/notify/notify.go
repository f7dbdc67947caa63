// Package notify carries the outcome reports the repository emits after
// every remote operation. Delivery is fire-and-forget: notifiers never
// return errors and must not block.
package notify

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Level classifies a notice.
type Level int

// Levels.
const (
	Success Level = iota
	Failure
)

func (l Level) String() string {
	if l == Failure {
		return "error"
	}
	return "success"
}

// Notice describes the outcome of one operation.
type Notice struct {
	Level   Level
	Op      string // operation name, e.g. "create task"
	TaskID  string // affected task or edge id, if known
	Message string // user-facing banner text
	Err     error
	Time    time.Time
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to a Notifier.
type Func func(Notice)

// Notify implements Notifier.
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

type multi []Notifier

func (m multi) Notify(n Notice) {
	for _, x := range m {
		x.Notify(n)
	}
}

// Multi fans a notice out to every non-nil notifier in order.
func Multi(ns ...Notifier) Notifier {
	var m multi
	for _, n := range ns {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

// LogNotifier writes notices to a logrus logger: successes at info,
// failures at error.
type LogNotifier struct {
	log logrus.FieldLogger
}

// NewLog returns a LogNotifier writing to l.
func NewLog(l logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: l}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(no Notice) {
	entry := n.log.WithField("op", no.Op)
	if no.TaskID != "" {
		entry = entry.WithField("id", no.TaskID)
	}
	if no.Level == Failure {
		entry.WithError(no.Err).Error(no.Message)
		return
	}
	entry.Info(no.Message)
}
