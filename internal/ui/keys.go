package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NewRoom    key.Binding
	Tab        key.Binding
	Escape     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Room actions
	Upload   key.Binding
	Paste    key.Binding
	Activate key.Binding
	CopyURL  key.Binding
	ShowQR   key.Binding
	SaveQR   key.Binding

	// Paging
	PrevItems  key.Binding
	NextItems  key.Binding
	PrevPastes key.Binding
	NextPastes key.Binding

	// Prompt
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		NewRoom: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New room"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch files/pastes"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		// Navigation
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

		// Room actions
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload a file"),
		),
		Paste: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Paste clipboard"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Download file / copy paste"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy room URL"),
		),
		ShowQR: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Show QR code"),
		),
		SaveQR: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save QR image"),
		),

		// Paging
		PrevItems: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous files page"),
		),
		NextItems: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next files page"),
		),
		PrevPastes: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "Previous pastes page"),
		),
		NextPastes: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "Next pastes page"),
		),

		// Prompt
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Upload, k.Paste, k.Activate, k.CopyURL, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Top, k.Bottom},
		{k.Upload, k.Paste, k.Activate},
		{k.CopyURL, k.ShowQR, k.SaveQR, k.NewRoom},
		{k.PrevItems, k.NextItems, k.PrevPastes, k.NextPastes},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
