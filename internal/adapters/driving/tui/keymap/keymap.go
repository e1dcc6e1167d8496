// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// NextField cycles the search field.
	NextField key.Binding

	// NextInput moves focus to the next input.
	NextInput key.Binding

	// PrevStore and NextStore cycle the store selector.
	PrevStore key.Binding
	NextStore key.Binding

	// Confirm accepts a suggestion or records the observation.
	Confirm key.Binding

	// Export writes the observation list.
	Export key.Binding

	// Reset clears the observation list after confirmation.
	Reset key.Binding

	// Yes and No answer a confirmation prompt.
	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "field"),
		),
		NextInput: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "next input"),
		),
		PrevStore: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev store"),
		),
		NextStore: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next store"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Help}
}

// CollectHelp returns keybindings for the collection view.
func (k *KeyMap) CollectHelp() []key.Binding {
	return []key.Binding{k.NextField, k.NextInput, k.Confirm, k.Back}
}

// ObservationsHelp returns keybindings for the observations view.
func (k *KeyMap) ObservationsHelp() []key.Binding {
	return []key.Binding{k.Export, k.Reset, k.Back}
}

// PromptHelp returns keybindings for a yes/no prompt.
func (k *KeyMap) PromptHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.NextInput, k.PrevStore, k.NextStore, k.Confirm},
		{k.Up, k.Down, k.Export, k.Reset},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
