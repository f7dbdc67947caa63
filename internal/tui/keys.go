package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Advance  key.Binding
	Back     key.Binding
	Delete   key.Binding
	Detail   key.Binding
	Reload   key.Binding
	HideDone key.Binding
	Quit     key.Binding
	Yes      key.Binding
	No       key.Binding
}

var keys = keyMap{
	Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "column")),
	Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "column")),
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Advance:  key.NewBinding(key.WithKeys("n", " "), key.WithHelp("n", "advance")),
	Back:     key.NewBinding(key.WithKeys("p", "backspace"), key.WithHelp("p", "back")),
	Delete:   key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
	Detail:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	HideDone: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "hide done")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Yes:      key.NewBinding(key.WithKeys("y", "Y")),
	No:       key.NewBinding(key.WithKeys("n", "N", "esc", "q")),
}

// shortHelp lists the bindings shown in the status bar.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Back, k.Detail, k.Delete, k.HideDone, k.Quit}
}
