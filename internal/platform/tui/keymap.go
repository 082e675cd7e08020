package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the preview viewer.
type KeyMap struct {
	Regenerate key.Binding
	NextTheme  key.Binding
	NextMode   key.Binding
	LevelUp    key.Binding
	LevelDown  key.Binding
	Runs       key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard viewer bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Regenerate: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "regenerate"),
		),
		NextTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next theme"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "next mode"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("+", "=", "right"),
			key.WithHelp("+", "level up"),
		),
		LevelDown: key.NewBinding(
			key.WithKeys("-", "left"),
			key.WithHelp("-", "level down"),
		),
		Runs: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "run history"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel generation"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Regenerate, k.NextTheme, k.NextMode, k.Runs, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Regenerate, k.NextTheme, k.NextMode},
		{k.LevelUp, k.LevelDown, k.Runs},
		{k.Cancel, k.Help, k.Quit},
	}
}
