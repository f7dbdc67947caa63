package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/log"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/tui"
	"github.com/twiced-technology-gmbh/taskdeck/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Notices reach the program once it exists; the initial load is
	// repeated by the board itself.
	var p *tea.Program
	send := func(m tea.Msg) {
		if p != nil {
			p.Send(m)
		}
	}
	logger := log.GetLogger()
	notifiers := []notify.Notifier{tui.NoticeSender(send), activity.NewNotifier(cfg.Dir(), logger)}
	if flagVerbose {
		notifiers = append(notifiers, notify.NewLog(logger))
	}
	n := notify.Multi(notifiers...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo, b, err := openRepository(ctx, cfg, n)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck // program is exiting

	model := tui.NewBoard(cfg, repo)
	defer model.Close()
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if len(b.watch) > 0 {
		go startTUIWatcher(ctx, b.watch, p)
	}

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, paths []string, p *tea.Program) {
	w, err := watcher.New(paths, func() {
		p.Send(tui.ReloadMsg{})
	}, watcher.WithIgnore(watcher.IgnoreBookkeeping))
	if err != nil {
		log.GetLogger().WithError(err).Warn("live refresh disabled")
		return
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		log.GetLogger().WithError(err).Debug("file watcher")
	})
}
