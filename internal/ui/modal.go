package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is an overlay that takes all key input while open.
// Update returns the updated modal, a command, and whether the modal closed.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}
