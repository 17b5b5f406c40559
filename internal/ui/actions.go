package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/room"
)

// actionKind names a user action whose result is reported back to the model.
type actionKind int

const (
	actionUpload actionKind = iota
	actionPaste
	actionCopy
	actionDownload
	actionCopyURL
	actionSaveQR
	actionPoll
)

// actionMsg carries the outcome of an action command.
type actionMsg struct {
	kind   actionKind
	roomID string
	detail string
	err    error
}

func uploadCmd(s *room.Session, path string) tea.Cmd {
	return func() tea.Msg {
		err := s.Uploader.Upload(s.Context(), path)
		return actionMsg{kind: actionUpload, roomID: s.RoomID(), detail: filepath.Base(path), err: err}
	}
}

func pasteCmd(s *room.Session) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{kind: actionPaste, roomID: s.RoomID(), err: s.Paster.Submit(s.Context())}
	}
}

func copyCmd(s *room.Session, paste bridge.Paste) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{kind: actionCopy, roomID: s.RoomID(), err: s.Copier.Press(s.Context(), paste)}
	}
}

func downloadCmd(s *room.Session, item bridge.Item) tea.Cmd {
	return func() tea.Msg {
		path, err := s.Downloader.Download(s.Context(), item)
		return actionMsg{kind: actionDownload, roomID: s.RoomID(), detail: path, err: err}
	}
}

func copyURLCmd(s *room.Session) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{kind: actionCopyURL, roomID: s.RoomID(), err: s.CopyRoomURL()}
	}
}

func saveQRCmd(s *room.Session) tea.Cmd {
	return func() tea.Msg {
		path, err := s.SaveQR(s.Context())
		return actionMsg{kind: actionSaveQR, roomID: s.RoomID(), detail: path, err: err}
	}
}

func pollCmd(s *room.Session, pane Pane) tea.Cmd {
	return func() tea.Msg {
		var err error
		if pane == PaneItems {
			_, err = s.Items.Poll(s.Context())
		} else {
			_, err = s.Pastes.Poll(s.Context())
		}
		return actionMsg{kind: actionPoll, roomID: s.RoomID(), err: err}
	}
}

// handleAction turns an action result into footer text. Control state itself
// lives in the store and arrives with the next snapshot.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.roomID != m.roomID() {
		return m, nil
	}
	var refresh tea.Cmd
	if m.session != nil {
		refresh = fetchSnapshotCmd(m.session.Store)
	}

	err := msg.err
	switch {
	case err == nil:
	case errors.Is(err, room.ErrRoomExpired):
		// The expired screen replaces the room view on the next snapshot.
		return m, refresh
	case errors.Is(err, room.ErrBusy):
		m.setStatus("Already in progress", false)
		return m, refresh
	case msg.kind == actionPoll:
		// Poll failures show up as the muted LastError hint.
		return m, refresh
	}

	switch msg.kind {
	case actionUpload:
		if err != nil {
			m.setStatus("Upload of "+msg.detail+" failed", true)
		} else {
			m.setStatus("", false)
		}
	case actionPaste:
		if err != nil && !errors.Is(err, room.ErrClipboardDenied) {
			m.setStatus("Paste failed", true)
		} else if err == nil {
			m.setStatus("", false)
		}
	case actionCopy:
		if err != nil {
			m.setStatus("Copy failed", true)
		}
	case actionDownload:
		if err != nil {
			m.setStatus("Download failed", true)
		} else {
			m.setStatus("", false)
		}
	case actionCopyURL:
		if err != nil {
			m.setStatus("Could not copy the room URL", true)
		} else {
			m.setStatus("", false)
		}
	case actionSaveQR:
		if err != nil {
			m.setStatus("Could not save QR code", true)
		} else {
			m.modal = nil
			m.setStatus("", false)
		}
	}
	return m, refresh
}

// expandUserPath resolves a leading ~ in a typed path.
func expandUserPath(raw string) string {
	path := strings.TrimSpace(raw)
	path = strings.Trim(path, `"'`)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
