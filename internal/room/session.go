package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/clipboard"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

// Config wires a Session.
type Config struct {
	API           bridge.API
	Clipboard     clipboard.Clipboard
	RoomID        string
	PageSize      int    // zero uses DefaultPageSize
	DownloadDir   string // where items and QR images are saved
	WebOrigin     string // base of the shareable room URL
	Logger        *slog.Logger
	ProgressEvery time.Duration // zero uses the default throttle
}

// Session is everything that belongs to one open room. Its context is
// cancelled by Close or by room expiry.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
	logger *slog.Logger

	Store      *state.Store
	Guard      *transfer.Guard
	Lifecycle  *Lifecycle
	Items      *ItemPoller
	Pastes     *PastePoller
	Uploader   *Uploader
	Copier     *Copier
	Paster     *Paster
	Downloader *Downloader
}

// NewSession builds the room engine for cfg.RoomID.
func NewSession(parent context.Context, cfg Config) (*Session, error) {
	if cfg.API == nil {
		return nil, errors.New("room: api client required")
	}
	roomID := strings.TrimSpace(cfg.RoomID)
	if roomID == "" {
		return nil, errors.New("room: room id required")
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = &clipboard.System{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("room_id", roomID))

	ctx, cancel := context.WithCancel(parent)
	store := state.NewStore(roomID)
	guard := &transfer.Guard{}
	life := NewLifecycle(roomID, cfg.API, store, logger, cancel)

	s := &Session{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		logger:    logger,
		Store:     store,
		Guard:     guard,
		Lifecycle: life,
	}
	s.Items = &ItemPoller{roomID: roomID, api: cfg.API, store: store, guard: guard, life: life, logger: logger, pageSize: cfg.PageSize}
	s.Pastes = &PastePoller{roomID: roomID, api: cfg.API, store: store, guard: guard, life: life, logger: logger, pageSize: cfg.PageSize}
	s.Uploader = &Uploader{roomID: roomID, api: cfg.API, store: store, guard: guard, life: life, logger: logger, progressEvery: cfg.ProgressEvery}
	s.Copier = &Copier{roomID: roomID, api: cfg.API, store: store, clip: cfg.Clipboard, life: life, logger: logger}
	s.Paster = &Paster{roomID: roomID, api: cfg.API, store: store, guard: guard, clip: cfg.Clipboard, life: life, logger: logger, progressEvery: cfg.ProgressEvery}
	s.Downloader = &Downloader{roomID: roomID, api: cfg.API, store: store, guard: guard, life: life, logger: logger, dir: cfg.DownloadDir, progressEvery: cfg.ProgressEvery}
	return s, nil
}

// Context is cancelled when the session closes or the room expires.
func (s *Session) Context() context.Context { return s.ctx }

// Close cancels all in-flight work of the session.
func (s *Session) Close() { s.cancel() }

// RoomID returns the id of the open room.
func (s *Session) RoomID() string { return s.Lifecycle.RoomID() }

// RoomURL returns the shareable link for the room.
func (s *Session) RoomURL() string {
	return RoomURL(s.cfg.WebOrigin, s.RoomID())
}

// CopyRoomURL writes the room link to the clipboard and raises the
// "room URL copied" notice.
func (s *Session) CopyRoomURL() error {
	if err := s.cfg.Clipboard.WriteText(s.RoomURL()); err != nil {
		s.logger.Warn("copy room url failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrClipboardCopyFailed, err)
	}
	s.Store.SetRoomURLCopied(true)
	return nil
}

// SaveQR stores the backend-rendered QR image of the room link in the
// download directory and returns its path.
func (s *Session) SaveQR(ctx context.Context) (string, error) {
	png, err := s.cfg.API.FetchQR(ctx, s.RoomID())
	if err != nil {
		if obs := s.Lifecycle.Observe(err); errors.Is(obs, ErrRoomExpired) {
			return "", obs
		}
		s.logger.Warn("qr fetch failed", errAttrs(err)...)
		return "", err
	}
	if err := EnsureDir(s.cfg.DownloadDir); err != nil {
		return "", err
	}
	f, path, err := createUnique(s.cfg.DownloadDir, "bridge-"+s.RoomID()+"-qr.png")
	if err != nil {
		return "", err
	}
	_, err = f.Write(png)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write qr: %w", err)
	}
	s.Store.SetNotice("Saved QR to " + path)
	return path, nil
}

// RoomURL joins a web origin and a room id into a shareable link.
func RoomURL(webOrigin, roomID string) string {
	base := strings.TrimRight(strings.TrimSpace(webOrigin), "/")
	return base + "/" + url.PathEscape(roomID)
}
