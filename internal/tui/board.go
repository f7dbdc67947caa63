// Package tui implements a terminal UI for taskdeck boards.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewConfirmDelete
	viewDetail
)

// Layout and timing constants.
const (
	boardChrome   = 2 // blank line + status bar below the column area
	toastChrome   = 1 // extra line when a toast is displayed
	tickInterval  = time.Second
	toastLifetime = 4 * time.Second
	actionTimeout = 30 * time.Second
)

// Repo is the part of the repository the board drives.
type Repo interface {
	Load(ctx context.Context) error
	Snapshot() repository.Snapshot
	Subscribe() (<-chan repository.Snapshot, func())
	SetStatus(ctx context.Context, id string, s task.Status) (*task.Task, error)
	Delete(ctx context.Context, id string) error
}

// Board is the top-level bubbletea model.
type Board struct {
	cfg  *config.Config
	repo Repo
	subs <-chan repository.Snapshot
	stop func()

	snap      repository.Snapshot
	blocked   map[string][]string // task id -> blocker titles
	columns   []column
	activeCol int
	activeRow int
	view      view
	width     int
	height    int
	hideDone  bool
	toast     *toast
	now       func() time.Time

	// Delete confirmation.
	deleteID    string
	deleteTitle string
}

// column groups tasks belonging to a single status.
type column struct {
	status    task.Status
	tasks     []*task.Task
	scrollOff int // first visible row index
}

type toast struct {
	notice  notify.Notice
	expires time.Time
}

// NewBoard creates a Board over repo and subscribes to its snapshots.
// Call Close when the program exits.
func NewBoard(cfg *config.Config, repo Repo) *Board {
	b := &Board{
		cfg:      cfg,
		repo:     repo,
		now:      time.Now,
		hideDone: cfg.TUI.HideComplete,
	}
	b.subs, b.stop = repo.Subscribe()
	b.apply(repo.Snapshot())
	return b
}

// SetNow overrides the clock used for toasts and overdue markers.
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// Close ends the snapshot subscription.
func (b *Board) Close() {
	if b.stop != nil {
		b.stop()
	}
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tea.Batch(tickCmd(), b.loadCmd(), waitForSnapshot(b.subs))
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.clampRow()
		return b, nil
	case ReloadMsg:
		return b, b.loadCmd()
	case SnapshotMsg:
		b.apply(msg.Snapshot)
		return b, waitForSnapshot(b.subs)
	case subscriptionClosedMsg:
		return b, nil
	case NoticeMsg:
		b.toast = &toast{notice: msg.Notice, expires: b.now().Add(toastLifetime)}
		return b, nil
	case TickMsg:
		if b.toast != nil && !b.now().Before(b.toast.expires) {
			b.toast = nil
		}
		return b, tickCmd()
	case errMsg:
		// Failures reach the user as notices; keep one visible in case no
		// notifier is attached.
		if b.toast == nil {
			b.toast = &toast{
				notice:  notify.Notice{Level: notify.Failure, Message: msg.err.Error(), Err: msg.err},
				expires: b.now().Add(toastLifetime),
			}
		}
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewDetail:
		return b.viewDetail()
	default:
		return b.viewBoard()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return b, tea.Quit
	}

	switch b.view {
	case viewBoard:
		return b.handleBoardKey(msg)
	case viewConfirmDelete:
		return b.handleDeleteKey(msg)
	case viewDetail:
		b.view = viewBoard
	}
	return b, nil
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, keys.Left):
		if b.activeCol > 0 {
			b.activeCol--
			b.clampRow()
		}
	case key.Matches(msg, keys.Right):
		if b.activeCol < len(b.columns)-1 {
			b.activeCol++
			b.clampRow()
		}
	case key.Matches(msg, keys.Down):
		col := b.currentColumn()
		if col != nil && b.activeRow < len(col.tasks)-1 {
			b.activeRow++
			b.ensureVisible()
		}
	case key.Matches(msg, keys.Up):
		if b.activeRow > 0 {
			b.activeRow--
			b.ensureVisible()
		}
	case key.Matches(msg, keys.Advance):
		if t := b.selectedTask(); t != nil && t.Status != t.Status.Next() {
			return b, b.setStatusCmd(t.ID, t.Status.Next())
		}
	case key.Matches(msg, keys.Back):
		if t := b.selectedTask(); t != nil && t.Status != t.Status.Prev() {
			return b, b.setStatusCmd(t.ID, t.Status.Prev())
		}
	case key.Matches(msg, keys.Delete):
		if t := b.selectedTask(); t != nil {
			b.deleteID = t.ID
			b.deleteTitle = t.Title
			b.view = viewConfirmDelete
		}
	case key.Matches(msg, keys.Detail):
		if b.selectedTask() != nil {
			b.view = viewDetail
		}
	case key.Matches(msg, keys.Reload):
		return b, b.loadCmd()
	case key.Matches(msg, keys.HideDone):
		b.hideDone = !b.hideDone
		b.apply(b.snap)
	}
	return b, nil
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		b.view = viewBoard
		return b, b.deleteCmd(b.deleteID)
	case key.Matches(msg, keys.No):
		b.view = viewBoard
	}
	return b, nil
}

func (b *Board) loadCmd() tea.Cmd {
	repo := b.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := repo.Load(ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (b *Board) setStatusCmd(id string, s task.Status) tea.Cmd {
	repo := b.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if _, err := repo.SetStatus(ctx, id, s); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (b *Board) deleteCmd(id string) tea.Cmd {
	repo := b.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := repo.Delete(ctx, id); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// apply rebuilds the columns from a snapshot, keeping the selection on the
// same task when it is still visible.
func (b *Board) apply(snap repository.Snapshot) {
	var selected string
	if t := b.selectedTask(); t != nil {
		selected = t.ID
	}

	b.snap = snap
	b.blocked = make(map[string][]string)
	for _, bt := range board.FindBlockedTasks(snap.Tasks, snap.Edges) {
		b.blocked[bt.Task.ID] = bt.Titles()
	}

	tasks := append([]*task.Task(nil), snap.Tasks...)
	board.Sort(tasks, "priority", false)

	statuses := task.Statuses
	if b.hideDone {
		statuses = statuses[:len(statuses)-1]
	}
	b.columns = make([]column, len(statuses))
	for i, s := range statuses {
		b.columns[i] = column{status: s}
	}
	for _, t := range tasks {
		for i := range b.columns {
			if b.columns[i].status == t.Status {
				b.columns[i].tasks = append(b.columns[i].tasks, t)
				break
			}
		}
	}

	if b.activeCol >= len(b.columns) {
		b.activeCol = len(b.columns) - 1
	}
	if selected != "" {
		for ci := range b.columns {
			for ri, t := range b.columns[ci].tasks {
				if t.ID == selected {
					b.activeCol, b.activeRow = ci, ri
				}
			}
		}
	}
	b.clampRow()
}

func (b *Board) currentColumn() *column {
	if b.activeCol >= 0 && b.activeCol < len(b.columns) {
		return &b.columns[b.activeCol]
	}
	return nil
}

func (b *Board) selectedTask() *task.Task {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		return nil
	}
	if b.activeRow >= 0 && b.activeRow < len(col.tasks) {
		return col.tasks[b.activeRow]
	}
	return nil
}

func (b *Board) clampRow() {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= len(col.tasks) {
		b.activeRow = len(col.tasks) - 1
	}
	b.ensureVisible()
}

// chromeHeight returns the number of lines consumed by non-card elements below
// the column area.
func (b *Board) chromeHeight() int {
	h := boardChrome
	if b.toast != nil {
		h += toastChrome
	}
	return h
}

// visibleCardsForColumn returns the number of cards that fit in the column,
// accounting for scroll indicator lines.
func (b *Board) visibleCardsForColumn(col *column, width int) int {
	budget := b.height - b.chromeHeight()
	if budget < 1 {
		return 1
	}

	avail := budget - 1 // column header
	if col.scrollOff > 0 {
		avail--
	}

	n := b.fitCardsInHeight(col, avail, width)
	if col.scrollOff+n < len(col.tasks) {
		n = b.fitCardsInHeight(col, avail-1, width)
		if n < 1 {
			n = 1
		}
	}
	return n
}

// ensureVisible adjusts the active column's scroll offset so the
// selected row is within the visible window.
func (b *Board) ensureVisible() {
	col := b.currentColumn()
	if col == nil {
		return
	}
	w := b.columnWidth()

	for i, n := 0, len(col.tasks)+1; i < n; i++ {
		maxVis := b.visibleCardsForColumn(col, w)

		switch {
		case b.activeRow >= col.scrollOff+maxVis:
			col.scrollOff = b.activeRow - maxVis + 1
		case b.activeRow < col.scrollOff:
			col.scrollOff = b.activeRow
		default:
			return
		}
	}
}

func (b *Board) fitCardsInHeight(col *column, avail, width int) int {
	if len(col.tasks) == 0 || avail < 1 {
		return 1
	}

	used := 0
	count := 0
	for i := col.scrollOff; i < len(col.tasks); i++ {
		cardLines := b.cardHeight(col.tasks[i], width)
		if count > 0 && used+cardLines > avail {
			break
		}
		count++
		used += cardLines
		if used >= avail {
			break
		}
	}
	return max(count, 1)
}
