package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/clipboard"
	"github.com/five82/bridge/internal/config"
	"github.com/five82/bridge/internal/prefs"
	"github.com/five82/bridge/internal/room"
	"github.com/five82/bridge/internal/ui"
)

// Options configure the bridge application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/bridge/prefs.toml
	RoomID       string // room to open; empty reopens the last room
	NewRoom      bool   // always create a fresh room
	PollInterval time.Duration
	DownloadDir  string
	LogFile      string
	Debug        bool
}

// Run boots the bridge TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog(cfg.LogFile, opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := bridge.NewClient(cfg.BackendOrigin)
	if err != nil {
		return fmt.Errorf("init bridge client: %w", err)
	}

	l := &launcher{
		parent:    ctx,
		api:       client,
		clip:      &clipboard.System{TTY: os.Stderr},
		cfg:       cfg,
		prefsPath: opts.PrefsPath,
		logger:    logger,
	}

	session, err := l.Open(ctx, startRoom(opts, userPrefs))
	if err != nil {
		return err
	}
	logger.Info("bridge started",
		slog.String("backend", cfg.BackendOrigin),
		slog.String("room_id", session.RoomID()),
	)

	return ui.Run(ui.Options{
		Context:   ctx,
		Session:   session,
		Open:      l.Open,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load bridge config: %w", err)
	}
	if opts.PollInterval > 0 {
		cfg.PollInterval = opts.PollInterval
	}
	if dir := strings.TrimSpace(opts.DownloadDir); dir != "" {
		if cfg.DownloadDir, err = config.ExpandPath(dir); err != nil {
			return config.Config{}, fmt.Errorf("download dir: %w", err)
		}
	}
	if file := strings.TrimSpace(opts.LogFile); file != "" {
		if cfg.LogFile, err = config.ExpandPath(file); err != nil {
			return config.Config{}, fmt.Errorf("log file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// startRoom picks the room to open at launch: an explicit id, then the most
// recent room, then a new one (empty id).
func startRoom(opts Options, p prefs.Prefs) string {
	if opts.NewRoom {
		return ""
	}
	if id := strings.TrimSpace(opts.RoomID); id != "" {
		return id
	}
	if id, ok := p.LastRoom(); ok {
		return id
	}
	return ""
}

// openLog sends structured logs to path. The terminal belongs to the TUI.
func openLog(path string, debug bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}

// launcher opens room sessions for the UI.
type launcher struct {
	parent    context.Context
	api       bridge.API
	clip      clipboard.Clipboard
	cfg       config.Config
	prefsPath string
	logger    *slog.Logger
}

// Open creates a session for roomID, or for a new room when roomID is empty,
// checks that the room still exists and starts its pollers. A room that no
// longer exists is returned already expired so the UI shows the expired
// screen.
func (l *launcher) Open(ctx context.Context, roomID string) (*room.Session, error) {
	if strings.TrimSpace(roomID) == "" {
		id, err := l.api.NewRoom(ctx)
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		roomID = id
		l.logger.Info("room created", slog.String("room_id", roomID))
	}

	s, err := room.NewSession(l.parent, room.Config{
		API:         l.api,
		Clipboard:   l.clip,
		RoomID:      roomID,
		PageSize:    l.cfg.ItemsPerPage,
		DownloadDir: l.cfg.DownloadDir,
		WebOrigin:   l.cfg.WebOrigin,
		Logger:      l.logger,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.Lifecycle.Check(ctx)
	switch {
	case err != nil:
		// Offline at launch is not expiry; the pollers keep trying.
		l.logger.Warn("room check failed", slog.String("room_id", roomID), slog.Any("error", err))
	case !exists:
		return s, nil
	}

	StartPollers(s.Context(), s, PollerOptions{Interval: l.cfg.PollInterval, Stagger: true})
	l.remember(roomID)
	return s, nil
}

func (l *launcher) remember(roomID string) {
	p, _ := prefs.Load(l.prefsPath)
	p.RememberRoom(roomID)
	if err := prefs.Save(l.prefsPath, p); err != nil {
		l.logger.Warn("save prefs failed", slog.Any("error", err))
	}
}
