package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
)

// renderRoom renders the room screen.
func (m Model) renderRoom() string {
	sections := []string{
		m.renderHeader(),
		m.renderCommandBar(),
		m.renderUpload(),
	}
	if items := m.renderItems(); items != "" {
		sections = append(sections, items)
	}
	sections = append(sections, m.renderPasteControl())
	if pastes := m.renderPastes(); pastes != "" {
		sections = append(sections, pastes)
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("bridge", styles.Logo),
		bg.Render("room "+m.roomID(), styles.AccentText),
	}
	if m.width >= LayoutCompactWidth && m.session != nil {
		parts = append(parts, bg.Render(m.session.RoomURL(), styles.MutedText))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("backend unreachable", styles.WarningText))
	}
	line := bg.Join(parts, "  ")
	return bg.FillLine(line, m.width)
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, styles.WarningText.Render("<"+h.Key+">")+" "+styles.MutedText.Render(h.Desc))
	}
	return strings.Join(hints, "  ")
}

func (m Model) renderUpload() string {
	styles := m.theme.Styles()
	up := m.snapshot.Upload

	if m.prompting {
		return m.input.View()
	}

	label := styles.AccentText.Render("[u] Upload a file")
	switch up.Phase {
	case state.UploadRequesting, state.UploadTransferring, state.UploadFinalizing:
		label = styles.StateStyle(up.Phase.String()).Render(up.Phase.String()) + " " +
			styles.Text.Render(truncateMiddle(up.FileName, 40)) + " " +
			styles.MutedText.Render(humanize.Bytes(uint64(max(up.Size, 0))))
	case state.UploadError:
		label = styles.DangerText.Render("Upload failed") + " " +
			styles.MutedText.Render("press u to retry")
	}
	return label + "\n" + m.progressBar(up.Percent)
}

// renderItems returns "" for an empty page so no list box is drawn.
func (m Model) renderItems() string {
	items := m.snapshot.Items
	if len(items) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Files"))
	b.WriteString(styles.MutedText.Render(m.pageLabel(m.itemsPage(), m.snapshot.ItemsTotal, m.pageSize())))
	for i, item := range items {
		b.WriteString("\n")
		b.WriteString(m.renderItemRow(item, i == m.itemRow && m.focus == PaneItems))
	}
	return m.theme.Panel(m.focus == PaneItems, m.panelWidth()).Render(b.String())
}

func (m Model) renderItemRow(item bridge.Item, selected bool) string {
	styles := m.theme.Styles()
	name := truncateMiddle(item.FileName, max(m.panelWidth()-20, 12))
	row := padRight(name, max(m.panelWidth()-18, 12))

	var suffix string
	if d, ok := m.snapshot.Downloads[item.ID]; ok {
		switch {
		case d.Err != nil:
			suffix = styles.DangerText.Render("failed")
		case d.Done:
			suffix = styles.SuccessText.Render("saved")
		default:
			suffix = styles.InfoText.Render(fmt.Sprintf("%3d%%", d.Percent))
		}
	}
	if selected {
		return styles.Selected.Render(row) + " " + suffix
	}
	return styles.Text.Render(row) + " " + suffix
}

func (m Model) renderPasteControl() string {
	styles := m.theme.Styles()
	st := m.snapshot.PasteInput
	label := "[v] " + st.Label()
	switch st {
	case state.PasteError:
		label = styles.DangerText.Render(label)
	case state.PasteLoading:
		label = styles.InfoText.Render(label)
	default:
		label = styles.AccentText.Render(label)
	}
	return label + "\n" + m.progressBar(m.snapshot.PastePercent)
}

// renderPastes returns "" for an empty page so no list box is drawn.
func (m Model) renderPastes() string {
	pastes := m.snapshot.Pastes
	if len(pastes) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Pastes"))
	b.WriteString(styles.MutedText.Render(m.pageLabel(m.pastesPage(), m.snapshot.PastesTotal, m.pageSize())))
	for i, p := range pastes {
		b.WriteString("\n")
		b.WriteString(m.renderPasteRow(p, i == m.pasteRow && m.focus == PanePastes))
	}
	return m.theme.Panel(m.focus == PanePastes, m.panelWidth()).Render(b.String())
}

func (m Model) renderPasteRow(p bridge.Paste, selected bool) string {
	styles := m.theme.Styles()
	entry := m.snapshot.CopyEntry(p.ID)
	text := padRight(truncate(pasteLabel(entry.State, p.Content), max(m.panelWidth()-14, 12)), max(m.panelWidth()-12, 12))
	badge := styles.StateStyle(entry.State.String()).Render(entry.State.String())
	if selected {
		return styles.Selected.Render(text) + " " + badge
	}
	return styles.Text.Render(text) + " " + badge
}

// pasteLabel is the row text for a paste in the given copy state.
func pasteLabel(st state.CopyState, preview string) string {
	return st.Label(singleLine(preview))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var parts []string
	switch {
	case m.status != "" && m.statusErr:
		parts = append(parts, styles.DangerText.Render(m.status))
	case m.status != "":
		parts = append(parts, styles.InfoText.Render(m.status))
	}
	if m.snapshot.RoomURLCopied {
		parts = append(parts, styles.SuccessText.Render("Room URL copied!"))
	}
	if m.snapshot.Notice != "" {
		parts = append(parts, styles.MutedText.Render(m.snapshot.Notice))
	}
	if m.snapshot.LastError != nil {
		parts = append(parts, styles.FaintText.Render("last poll failed "+sinceLabel(m.snapshot.LastUpdated)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) progressBar(percent int) string {
	width := min(max(m.width-4, 10), LayoutProgressWidth)
	bar := progress.New(
		progress.WithSolidFill(m.theme.Accent),
		progress.WithWidth(width),
	)
	bar.EmptyColor = m.theme.BorderMuted
	return bar.ViewAs(float64(min(max(percent, 0), 100)) / 100)
}

func (m Model) panelWidth() int {
	return min(max(m.width-4, 30), 100)
}

func (m Model) itemsPage() int {
	if m.session == nil {
		return 1
	}
	return m.session.Items.Page()
}

func (m Model) pastesPage() int {
	if m.session == nil {
		return 1
	}
	return m.session.Pastes.Page()
}

func (m Model) pageSize() int {
	if m.session == nil {
		return 1
	}
	return m.session.Items.PageSize()
}

func (m Model) pageLabel(page, total, size int) string {
	return fmt.Sprintf("  page %d/%d · %d total", page, pageCount(total, size), total)
}

func sinceLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// Selection helpers

func (m Model) selectedItem() (bridge.Item, bool) {
	if m.itemRow < 0 || m.itemRow >= len(m.snapshot.Items) {
		return bridge.Item{}, false
	}
	return m.snapshot.Items[m.itemRow], true
}

func (m Model) selectedPaste() (bridge.Paste, bool) {
	if m.pasteRow < 0 || m.pasteRow >= len(m.snapshot.Pastes) {
		return bridge.Paste{}, false
	}
	return m.snapshot.Pastes[m.pasteRow], true
}

func (m *Model) moveRow(delta int) {
	if m.focus == PaneItems {
		m.setRow(m.itemRow + delta)
		return
	}
	m.setRow(m.pasteRow + delta)
}

func (m *Model) setRow(row int) {
	if m.focus == PaneItems {
		m.itemRow = clampRow(row, len(m.snapshot.Items))
		return
	}
	m.pasteRow = clampRow(row, len(m.snapshot.Pastes))
}

func (m *Model) clampRows() {
	m.itemRow = clampRow(m.itemRow, len(m.snapshot.Items))
	m.pasteRow = clampRow(m.pasteRow, len(m.snapshot.Pastes))
}

func clampRow(row, n int) int {
	if n == 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}
