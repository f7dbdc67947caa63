package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/taskdeck/internal/board"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/output"
	"github.com/twiced-technology-gmbh/taskdeck/internal/task"
)

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1)

	blockedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	priorityColors = map[task.Priority]lipgloss.Color{
		task.PriorityHigh:   "196",
		task.PriorityMedium: "226",
		task.PriorityLow:    "242",
	}

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

func (b *Board) viewBoard() string {
	colWidth := b.columnWidth()

	renderedCols := make([]string, len(b.columns))
	for i, col := range b.columns {
		renderedCols[i] = b.renderColumn(i, col, colWidth)
	}
	boardView := lipgloss.JoinHorizontal(lipgloss.Top, renderedCols...)

	// Clamp from the bottom (keeping headers at the top) and pad if needed.
	targetHeight := b.height - b.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			viewLines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(viewLines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderStatusBar())
}

func (b *Board) columnWidth() int {
	if b.width == 0 || len(b.columns) == 0 {
		return 30 //nolint:mnd // default column width
	}
	w := b.width / len(b.columns)
	const maxColWidth = 75
	return min(w, maxColWidth)
}

func (b *Board) renderColumn(colIdx int, col column, width int) string {
	minutes := 0
	for _, t := range col.tasks {
		minutes += t.Minutes()
	}
	headerText := fmt.Sprintf("%s (%d)", col.status, len(col.tasks))
	if minutes > 0 {
		headerText += " " + output.FormatMinutes(minutes)
	}
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	header := columnHeaderStyle.Width(width).Render(headerText)
	if colIdx == b.activeCol {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := b.visibleCardsForColumn(&col, width)
	start := min(col.scrollOff, len(col.tasks))
	end := min(start+maxVis, len(col.tasks))

	parts := []string{header}
	if start > 0 {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↑ %d more", start), width)))
	}
	if len(col.tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	for rowIdx := start; rowIdx < end; rowIdx++ {
		active := colIdx == b.activeCol && rowIdx == b.activeRow
		parts = append(parts, b.renderCard(col.tasks[rowIdx], active, width))
	}
	if end < len(col.tasks) {
		indicator := fmt.Sprintf("  ↓ %d more", len(col.tasks)-end)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t *task.Task, active bool, width int) string {
	content := strings.Join(b.cardContentLines(t, width), "\n")

	style := cardStyle
	if _, blocked := b.blocked[t.ID]; blocked {
		style = blockedCardStyle
	}
	if active {
		style = activeCardStyle
	}
	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

func (b *Board) cardHeight(t *task.Task, width int) int {
	return len(b.cardContentLines(t, width)) + 2 //nolint:mnd // top and bottom borders
}

func (b *Board) cardContentLines(t *task.Task, width int) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)

	lines := wrapTitle(t.Title, cardWidth, b.cfg.TitleLines())

	meta := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(string(t.Priority))
	if m := t.Minutes(); m > 0 {
		meta += dimStyle.Render(" · " + output.FormatMinutes(m))
	}
	if t.DueDate != nil {
		due := "due " + t.DueDate.Local().Format("Jan 2")
		if board.Overdue(t, b.now()) {
			meta += " " + errorStyle.Render(due)
		} else {
			meta += dimStyle.Render(" " + due)
		}
	}
	lines = append(lines, meta)

	if blockers, ok := b.blocked[t.ID]; ok {
		lines = append(lines, errorStyle.Render(truncate("⛔ "+strings.Join(blockers, ", "), cardWidth)))
	}
	return lines
}

func (b *Board) renderStatusBar() string {
	stats := board.ComputeStats(b.snap.Tasks)
	next := "nothing pending"
	if t := board.RecommendNext(b.snap.Tasks); t != nil {
		next = t.Title
	}

	help := make([]string, 0, len(keys.shortHelp()))
	for _, k := range keys.shortHelp() {
		h := k.Help()
		help = append(help, h.Key+":"+h.Desc)
	}

	status := fmt.Sprintf(" %s | %d tasks, %d pending, %d in progress, %d done, %d high | next: %s | %s",
		b.cfg.Board.Name, stats.Total, stats.Pending, stats.InProgress, stats.Completed, stats.HighPriority,
		next, strings.Join(help, " "))
	status = statusBarStyle.Render(truncate(status, b.width))

	if b.toast == nil {
		return status
	}
	return b.renderToast() + "\n" + status
}

func (b *Board) renderToast() string {
	n := b.toast.notice
	text := n.Message
	if n.Err != nil && n.Err.Error() != n.Message {
		text += ": " + n.Err.Error()
	}
	if n.Level == notify.Failure {
		return errorStyle.Render(truncate("✗ "+text, b.width))
	}
	return successStyle.Render(truncate("✓ "+text, b.width))
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", output.ShortID(b.deleteID), b.deleteTitle) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func (b *Board) viewDetail() string {
	t := b.selectedTask()
	if t == nil {
		return ""
	}
	var sb strings.Builder
	output.TaskDetail(&sb, output.NewDetail(t, b.snap.Tasks, b.snap.Edges, board.Overdue(t, b.now())))
	sb.WriteString("\n" + dimStyle.Render("any key: back"))
	return sb.String()
}

// wrapTitle splits a title across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(title) <= maxWidth || maxLines == 1 {
		return []string{truncate(title, maxWidth)}
	}

	words := strings.Fields(title)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
		} else {
			lines = append(lines, truncate(current.String(), maxWidth))
			current.Reset()
			current.WriteString(word)
			if len(lines) == maxLines-1 {
				// Last line: append all remaining words.
				for _, w := range words[i+1:] {
					current.WriteByte(' ')
					current.WriteString(w)
				}
				break
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
