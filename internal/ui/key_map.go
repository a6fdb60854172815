package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	toggle key.Binding
	focus  key.Binding
	enter  key.Binding
	mode   key.Binding
	next   key.Binding
	submit key.Binding
	back   key.Binding
	quit   key.Binding
	force  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		mode:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "unified/individual")),
		next:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next draft")),
		submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "post")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		force:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.mode, k.focus, k.force}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.enter},
		{k.focus, k.mode, k.next, k.submit},
		{k.back, k.quit, k.force},
	}
}
