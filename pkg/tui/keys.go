package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	next      key.Binding
	prev      key.Binding
	press     key.Binding
	open      key.Binding
	close     key.Binding
	emergency key.Binding
	call      key.Binding
	alert     key.Binding
	retry     key.Binding
	help      key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:      key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab/↓", "next")),
		prev:      key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab/↑", "prev")),
		press:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press")),
		open:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "emergency SOS")),
		close:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		emergency: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "emergency")),
		call:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "call")),
		alert:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "alert contacts")),
		retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// homeKeys is the help.KeyMap for the base view.
type homeKeys struct{ keyMap }

func (k homeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.open, k.next, k.press, k.help, k.quit}
}

func (k homeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.open, k.next, k.prev, k.press},
		{k.help, k.quit, k.forceQuit},
	}
}

// modalKeys is the help.KeyMap for the emergency overlay.
type modalKeys struct{ keyMap }

func (k modalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.emergency, k.call, k.alert, k.close, k.help}
}

func (k modalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.emergency, k.call, k.alert, k.retry},
		{k.next, k.prev, k.press, k.close},
		{k.help, k.forceQuit},
	}
}
