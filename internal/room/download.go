package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

const maxNameAttempts = 1000

// Downloader saves room items into a local directory.
type Downloader struct {
	roomID        string
	api           bridge.API
	store         *state.Store
	guard         *transfer.Guard
	life          *Lifecycle
	logger        *slog.Logger
	dir           string
	progressEvery time.Duration
}

// Download fetches item into the download directory and returns the path
// written. Existing files are never overwritten; a numbered suffix is added
// instead. Each item downloads at most once at a time.
func (d *Downloader) Download(ctx context.Context, item bridge.Item) (string, error) {
	if d.life.Expired() {
		return "", ErrRoomExpired
	}
	kind := transfer.DownloadKind(item.ID)
	if !d.guard.TryEnter(kind) {
		return "", ErrBusy
	}
	defer d.guard.Exit(kind)

	link, err := d.api.DownloadURL(ctx, d.roomID, item.ID)
	if err != nil {
		return "", d.fail(item, err)
	}

	if err := EnsureDir(d.dir); err != nil {
		return "", d.fail(item, err)
	}
	f, path, err := createUnique(d.dir, safeFileName(item))
	if err != nil {
		return "", d.fail(item, err)
	}

	progress := state.DownloadState{ItemID: item.ID, FileName: item.FileName, Path: path}
	d.store.SetDownload(progress)
	sink := newProgressSink(d.progressEvery, func(pct int) {
		p := progress
		p.Percent = pct
		d.store.SetDownload(p)
	})

	n, err := d.api.GetObject(ctx, link, f, sink.report)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", d.fail(item, err)
	}

	progress.Percent = 100
	progress.Done = true
	d.store.SetDownload(progress)
	d.store.SetNotice(fmt.Sprintf("Saved %s (%s)", filepath.Base(path), humanize.Bytes(uint64(n))))
	d.logger.Info("download complete",
		slog.Int64("item_id", item.ID),
		slog.String("path", path),
		slog.Int64("bytes", n),
	)
	return path, nil
}

func (d *Downloader) fail(item bridge.Item, err error) error {
	if obs := d.life.Observe(err); errors.Is(obs, ErrRoomExpired) {
		return obs
	}
	d.store.SetDownload(state.DownloadState{ItemID: item.ID, FileName: item.FileName, Err: err})
	d.logger.Warn("download failed", append(errAttrs(err), slog.Int64("item_id", item.ID))...)
	return fmt.Errorf("%w: %w", ErrTransferFailed, err)
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("download directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// safeFileName reduces a server-provided name to a single path element.
func safeFileName(item bridge.Item) string {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(item.FileName, `\`, "/")))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "item-" + strconv.FormatInt(item.ID, 10)
	}
	return name
}

// createUnique opens name inside dir for writing, picking "name (n).ext" when
// the plain name is taken.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
