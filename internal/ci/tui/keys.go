package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the watch TUI.
type KeyMap struct {
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}
