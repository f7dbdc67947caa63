package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/memstore"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

type fixture struct {
	repo  *repository.Repository
	board *Board
	ids   map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := repository.New(memstore.New())

	ids := map[string]string{}
	for _, f := range []task.Fields{
		{Title: "Alpha", Priority: task.PriorityHigh, Status: task.StatusPending},
		{Title: "Beta", Priority: task.PriorityMedium, Status: task.StatusPending},
		{Title: "Gamma", Priority: task.PriorityLow, Status: task.StatusCompleted},
	} {
		created, err := repo.Create(ctx, f)
		require.NoError(t, err)
		ids[created.Title] = created.ID
	}
	_, err := repo.AddEdge(ctx, ids["Beta"], ids["Alpha"])
	require.NoError(t, err)

	b := NewBoard(config.NewDefault("Test"), repo)
	t.Cleanup(b.Close)
	b.Update(tea.WindowSizeMsg{Width: 150, Height: 40})
	return &fixture{repo: repo, board: b, ids: ids}
}

func press(b *Board, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := b.Update(msg)
	return cmd
}

// run executes cmd and feeds the repository's new state back into the board.
func (f *fixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	if msg := cmd(); msg != nil {
		f.board.Update(msg)
	}
	f.board.Update(SnapshotMsg{Snapshot: f.repo.Snapshot()})
}

func TestBoardLayout(t *testing.T) {
	f := newFixture(t)
	v := f.board.View()

	assert.Contains(t, v, "pending (2)")
	assert.Contains(t, v, "in_progress (0)")
	assert.Contains(t, v, "completed (1)")
	assert.Contains(t, v, "⛔ Alpha")
	assert.Contains(t, v, "next: Alpha")
	assert.Contains(t, v, "3 tasks, 2 pending")
}

func TestLoadingBeforeResize(t *testing.T) {
	b := NewBoard(config.NewDefault("Test"), repository.New(memstore.New()))
	defer b.Close()
	assert.Equal(t, "Loading...", b.View())
}

func TestAdvanceStatus(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, "Alpha", f.board.selectedTask().Title)

	f.run(t, press(f.board, "n"))

	got, ok := f.repo.Task(f.ids["Alpha"])
	require.True(t, ok)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "Alpha", f.board.selectedTask().Title, "selection follows the task")
	assert.Equal(t, 1, f.board.activeCol)

	f.run(t, press(f.board, "p"))
	got, _ = f.repo.Task(f.ids["Alpha"])
	assert.Equal(t, task.StatusPending, got.Status)
}

func TestDeleteConfirm(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, press(f.board, "d"))
	assert.Contains(t, f.board.View(), "Delete task?")

	press(f.board, "n")
	assert.Equal(t, viewBoard, f.board.view)

	press(f.board, "d")
	f.run(t, press(f.board, "y"))

	_, ok := f.repo.Task(f.ids["Alpha"])
	assert.False(t, ok)
	assert.Empty(t, f.repo.Snapshot().Edges)
	assert.NotContains(t, f.board.View(), "⛔")
}

func TestDetailView(t *testing.T) {
	f := newFixture(t)
	press(f.board, "j")
	require.Equal(t, "Beta", f.board.selectedTask().Title)

	press(f.board, "enter")
	v := f.board.View()
	assert.Contains(t, v, "Beta")
	assert.Contains(t, v, "Depends on")

	press(f.board, "x")
	assert.Equal(t, viewBoard, f.board.view)
}

func TestToastExpires(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.board.SetNow(func() time.Time { return now })

	f.board.Update(NoticeMsg{Notice: notify.Notice{Level: notify.Failure, Message: repository.MsgUpdateFailed}})
	assert.Contains(t, f.board.View(), "✗ "+repository.MsgUpdateFailed)

	now = now.Add(toastLifetime)
	f.board.Update(TickMsg{})
	assert.NotContains(t, f.board.View(), repository.MsgUpdateFailed)
}

func TestHideCompleted(t *testing.T) {
	f := newFixture(t)
	press(f.board, "c")
	assert.Len(t, f.board.columns, 2)
	assert.NotContains(t, f.board.View(), "completed (")

	press(f.board, "c")
	assert.Len(t, f.board.columns, 3)
}

func TestWrapAndTruncate(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrapTitle("short", 10, 2))
	assert.Equal(t, []string{"one two", "three ..."}, wrapTitle("one two three four five", 9, 2))
	assert.Equal(t, "abc...", truncate("abcdefghij", 6))
}
