package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
)

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}

// SnapshotMsg carries a new repository snapshot.
type SnapshotMsg struct {
	Snapshot repository.Snapshot
}

// NoticeMsg carries a repository notice to show as a toast.
type NoticeMsg struct {
	Notice notify.Notice
}

// TickMsg is sent periodically to expire toasts and refresh overdue markers.
type TickMsg struct{}

type errMsg struct{ err error }

// subscriptionClosedMsg ends the snapshot listener.
type subscriptionClosedMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// waitForSnapshot blocks on the subscription until the next snapshot.
func waitForSnapshot(ch <-chan repository.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// NoticeSender returns a notifier that forwards notices to a running
// program, for use with repository.WithNotifier.
func NoticeSender(send func(tea.Msg)) notify.Notifier {
	return notify.Func(func(n notify.Notice) { send(NoticeMsg{Notice: n}) })
}
