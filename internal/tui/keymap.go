package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Structural edits
	Add      key.Binding
	Split    key.Binding
	Remove   key.Binding
	Rename   key.Binding
	Type     key.Binding
	TypeBack key.Binding

	// Panels and actions
	TogglePanel key.Binding
	Edit        key.Binding
	Refresh     key.Binding
	Confirm     key.Binding
	ConfirmSave key.Binding

	// Application
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next column"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next field"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add column/field"),
		),
		Split: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "split column"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "remove column/field"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename column"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle type"),
		),
		TypeBack: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle type back"),
		),
		TogglePanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit value"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "refresh preview"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "confirm mapping"),
		),
		ConfirmSave: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "confirm + save template"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
