package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/five82/bridge/internal/room"
)

// renderQR draws url as a QR code using half-block glyphs, two module rows per
// text line. Light modules are drawn, dark modules are left blank, so the code
// scans on a dark terminal.
func renderQR(url string) (string, error) {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", err
	}
	bmp := code.Bitmap()

	var b strings.Builder
	for y := 0; y < len(bmp); y += 2 {
		for x := range bmp[y] {
			top := !bmp[y][x]
			bottom := y+1 < len(bmp) && !bmp[y+1][x]
			switch {
			case top && bottom:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bottom:
				b.WriteString("▄")
			default:
				b.WriteString(" ")
			}
		}
		if y+2 < len(bmp) {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// qrModal shows the room link as a QR code. s saves the backend-rendered
// PNG; any other key closes it.
type qrModal struct {
	session *room.Session
	url     string
	code    string
	err     error
}

func newQRModal(s *room.Session) qrModal {
	m := qrModal{session: s}
	if s != nil {
		m.url = s.RoomURL()
	}
	m.code, m.err = renderQR(m.url)
	return m
}

func (q qrModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return q, nil, false
	}
	if key.Matches(km, keys.SaveQR) && q.session != nil {
		return q, saveQRCmd(q.session), false
	}
	return q, nil, true
}

func (q qrModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	body := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Render(q.code)
	if q.err != nil {
		body = styles.DangerText.Render("QR code unavailable: " + q.err.Error())
	}

	footer := styles.MutedText.Render(q.url) + "\n" +
		styles.WarningText.Render("<s>") + " " + styles.Text.Render("save PNG") + "  " +
		styles.WarningText.Render("<any>") + " " + styles.Text.Render("close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Background(lipgloss.Color(theme.SurfaceAlt)).
		Padding(0, 1).
		Align(lipgloss.Center)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		box.Render(body+"\n"+footer))
}
