package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderExpired replaces the room screen once the backend reports the room
// gone. Only the new-room and quit keys stay live.
func (m Model) renderExpired() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("This room has expired"))
	if id := m.roomID(); id != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("room " + id))
	}
	b.WriteString("\n\n")
	if m.opening {
		b.WriteString(styles.InfoText.Render("Opening a new room..."))
	} else {
		b.WriteString(styles.WarningText.Render("<n>") + " " + styles.Text.Render("new room"))
		b.WriteString("  ")
		b.WriteString(styles.WarningText.Render("<e>") + " " + styles.Text.Render("quit"))
	}
	if m.status != "" && m.statusErr {
		b.WriteString("\n\n")
		b.WriteString(styles.DangerText.Render(m.status))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Danger)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Padding(1, 3).
		Align(lipgloss.Center)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}
