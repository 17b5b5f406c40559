package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bridge/internal/prefs"
	"github.com/five82/bridge/internal/room"
	"github.com/five82/bridge/internal/state"
)

// View represents the current active screen.
type View int

const (
	ViewRoom View = iota
	ViewExpired
)

// Pane is the list that receives navigation keys.
type Pane int

const (
	PaneItems Pane = iota
	PanePastes
)

// OpenFunc opens a room session. An empty roomID asks the backend for a new
// room.
type OpenFunc func(ctx context.Context, roomID string) (*room.Session, error)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Session     *room.Session
	Open        OpenFunc
	RefreshTick time.Duration
	ThemeName   string
	PrefsPath   string
	Logger      *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	open        OpenFunc
	prefsPath   string
	refreshTick time.Duration
	logger      *slog.Logger
	keys        keyMap

	session *room.Session

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	focus  Pane

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	itemRow  int
	pasteRow int

	// Overlays
	showHelp bool
	modal    Modal

	// Upload path prompt
	prompting bool
	input     textinput.Model

	// Last action result, shown in the footer
	status    string
	statusErr bool
	opening   bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.RefreshTick
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	input := textinput.New()
	input.Prompt = "Upload file: "
	input.Placeholder = "path/to/file"
	input.CharLimit = 4096

	m := Model{
		ctx:         ctx,
		open:        opts.Open,
		prefsPath:   prefsPath,
		refreshTick: refresh,
		logger:      logger,
		keys:        DefaultKeyMap(),
		session:     opts.Session,
		theme:       GetTheme(themeName),
		input:       input,
	}
	if m.session != nil {
		m.snapshot = m.session.Store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refreshTick)}
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session.Store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-len(m.input.Prompt)-4, 10)
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		if msg.roomID != m.roomID() {
			// Late snapshot of a session that was replaced.
			return m, nil
		}
		m.snapshot = msg.snap
		m.lastUpdated = time.Now()
		m.clampRows()
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case sessionMsg:
		m.opening = false
		if msg.err != nil {
			m.setStatus("Could not open room: "+msg.err.Error(), true)
			return m, nil
		}
		if m.session != nil {
			m.session.Close()
		}
		m.session = msg.session
		m.snapshot = msg.session.Store.Snapshot()
		m.itemRow, m.pasteRow = 0, 0
		m.modal = nil
		m.setStatus("Opened room "+msg.session.RoomID(), false)
		return m, fetchSnapshotCmd(m.session.Store)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.currentView() == ViewExpired {
		return m.renderExpired()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderRoom()
}

// currentView is derived from the session so expiry supersedes whatever the
// room screen was showing.
func (m Model) currentView() View {
	if m.session == nil {
		return ViewExpired
	}
	if m.snapshot.Expired || m.session.Lifecycle.Expired() {
		return ViewExpired
	}
	return ViewRoom
}

func (m Model) roomID() string {
	if m.session == nil {
		return ""
	}
	return m.session.RoomID()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.saveTheme()
		return m, nil
	case key.Matches(msg, m.keys.NewRoom):
		return m.openRoom("")
	}

	if m.currentView() == ViewExpired {
		return m, nil
	}
	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			next = nil
		}
		m.modal = next
		return m, cmd
	}
	return m.handleRoomKey(msg)
}

func (m Model) handleRoomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneItems {
			m.focus = PanePastes
		} else {
			m.focus = PaneItems
		}
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Top):
		m.setRow(0)
	case key.Matches(msg, m.keys.Bottom):
		m.setRow(1 << 30)

	case key.Matches(msg, m.keys.Upload):
		if m.snapshot.Upload.Phase.Busy() {
			return m, nil
		}
		m.prompting = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Paste):
		if m.snapshot.PasteInput == state.PasteLoading {
			return m, nil
		}
		return m, pasteCmd(s)

	case key.Matches(msg, m.keys.Activate):
		if m.focus == PaneItems {
			if item, ok := m.selectedItem(); ok {
				return m, downloadCmd(s, item)
			}
			return m, nil
		}
		if paste, ok := m.selectedPaste(); ok {
			return m, copyCmd(s, paste)
		}

	case key.Matches(msg, m.keys.CopyURL):
		return m, copyURLCmd(s)
	case key.Matches(msg, m.keys.ShowQR):
		m.modal = newQRModal(s)
	case key.Matches(msg, m.keys.SaveQR):
		return m, saveQRCmd(s)

	case key.Matches(msg, m.keys.PrevItems):
		return m, m.turnPage(PaneItems, -1)
	case key.Matches(msg, m.keys.NextItems):
		return m, m.turnPage(PaneItems, 1)
	case key.Matches(msg, m.keys.PrevPastes):
		return m, m.turnPage(PanePastes, -1)
	case key.Matches(msg, m.keys.NextPastes):
		return m, m.turnPage(PanePastes, 1)
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.prompting = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		path := expandUserPath(m.input.Value())
		m.prompting = false
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		return m, uploadCmd(m.session, path)
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openRoom(roomID string) (tea.Model, tea.Cmd) {
	if m.open == nil || m.opening {
		return m, nil
	}
	m.opening = true
	m.setStatus("Opening a new room...", false)
	return m, openRoomCmd(m.ctx, m.open, roomID)
}

// turnPage moves a listing by delta pages and polls it at once.
func (m Model) turnPage(pane Pane, delta int) tea.Cmd {
	s := m.session
	if pane == PaneItems {
		next := clampPage(s.Items.Page()+delta, m.snapshot.ItemsTotal, s.Items.PageSize())
		if next == s.Items.Page() {
			return nil
		}
		s.Items.SetPage(next)
		return pollCmd(s, pane)
	}
	next := clampPage(s.Pastes.Page()+delta, m.snapshot.PastesTotal, s.Pastes.PageSize())
	if next == s.Pastes.Page() {
		return nil
	}
	s.Pastes.SetPage(next)
	return pollCmd(s, pane)
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session.Store))
	}
	// Schedule next tick
	cmds = append(cmds, tickCmd(m.refreshTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) saveTheme() {
	if m.prefsPath == "" {
		return
	}
	p, _ := prefs.Load(m.prefsPath)
	p.Theme = m.theme.Name
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", slog.Any("error", err))
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	roomID string
	snap   state.Snapshot
}

type sessionMsg struct {
	session *room.Session
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		snap := store.Snapshot()
		return snapshotMsg{roomID: snap.RoomID, snap: snap}
	}
}

func openRoomCmd(ctx context.Context, open OpenFunc, roomID string) tea.Cmd {
	return func() tea.Msg {
		s, err := open(ctx, roomID)
		return sessionMsg{session: s, err: err}
	}
}

// Run starts the Bubble Tea program and closes the active session on exit.
// Cancelling opts.Context ends the program without an error.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.session != nil {
		fm.session.Close()
	} else if m.session != nil {
		m.session.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
