package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders header segments on a shared background. lipgloss resets
// between styled segments leave unpainted gaps, so every word and separator
// is painted individually.
type BgStyle struct {
	bg    lipgloss.Color
	space string
}

func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render paints text with style on the shared background, spaces included.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wordStyle.Render(w))
	}
	return strings.Join(out, b.space)
}

// Join joins rendered parts with a painted separator. Empty parts are dropped.
func (b BgStyle) Join(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	if width <= 0 {
		return content
	}
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}
