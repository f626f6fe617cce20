package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the todo list screen.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Row actions.
	Toggle   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Archive  key.Binding
	Priority key.Binding // cycle the row's priority

	// List controls.
	New          key.Binding
	Search       key.Binding
	Filter       key.Binding
	Sort         key.Binding
	Category     key.Binding
	PriorityView key.Binding
	ShowArchived key.Binding
	Refresh      key.Binding

	// Batch shortcuts.
	CompleteAll     key.Binding
	DeleteCompleted key.Binding
	ArchiveDone     key.Binding

	Game key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "done"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Archive: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "archive"),
	),
	Priority: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "priority"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Category: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "category"),
	),
	PriorityView: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "priority view"),
	),
	ShowArchived: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "archived"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	CompleteAll: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "complete all"),
	),
	DeleteCompleted: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete done"),
	),
	ArchiveDone: key.NewBinding(
		key.WithKeys("Z"),
		key.WithHelp("Z", "archive done"),
	),
	Game: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "game"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// help is the one-line help shown under the list.
func (k KeyMap) help() []key.Binding {
	return []key.Binding{
		k.New, k.Toggle, k.Edit, k.Delete, k.Archive, k.Priority,
		k.Search, k.Filter, k.Sort, k.Category, k.PriorityView, k.ShowArchived,
		k.CompleteAll, k.DeleteCompleted, k.ArchiveDone, k.Game, k.Quit,
	}
}
