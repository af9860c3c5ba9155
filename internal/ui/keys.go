package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Back       key.Binding
	Goto       key.Binding
	Config     key.Binding
	Reload     key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Parent   key.Binding

	// Pagination
	NextPage     key.Binding
	PrevPage     key.Binding
	GrowPage     key.Binding
	ShrinkPage   key.Binding
	SnapshotList key.Binding

	// Lists
	Search key.Binding
	Filter key.Binding

	// File actions
	CopyPath    key.Binding
	CopyContent key.Binding
	Download    key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "Q"),
			key.WithHelp("Q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "Back"),
		),
		Goto: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "Go to route"),
		),
		Config: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Connection"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Scroll down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "Open"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "h", "left"),
			key.WithHelp("h/bksp", "Parent directory"),
		),

		NextPage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Previous page"),
		),
		GrowPage: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Larger pages"),
		),
		ShrinkPage: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Smaller pages"),
		),
		SnapshotList: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Snapshot list"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search repository"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filter this page"),
		),

		CopyPath: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy path"),
		),
		CopyContent: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy content"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Download"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Open, k.Parent, k.Back, k.Goto, k.SnapshotList},
		{k.NextPage, k.PrevPage, k.GrowPage, k.ShrinkPage},
		{k.Search, k.Filter, k.Reload},
		{k.CopyPath, k.CopyContent, k.Download},
		{k.Config, k.CycleTheme, k.Help, k.Quit},
	}
}
