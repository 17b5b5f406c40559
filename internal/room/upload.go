package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

// Uploader runs the presigned upload handshake for local files:
// request an item id and write URL, PUT the bytes, then mark the item ready.
type Uploader struct {
	roomID        string
	api           bridge.API
	store         *state.Store
	guard         *transfer.Guard
	life          *Lifecycle
	logger        *slog.Logger
	progressEvery time.Duration
}

// Upload sends the file at path to the room. A second call while one is
// running returns ErrBusy without touching the network.
func (u *Uploader) Upload(ctx context.Context, path string) error {
	if u.life.Expired() {
		return ErrRoomExpired
	}
	if !u.guard.TryEnter(transfer.KindUpload) {
		return ErrBusy
	}
	defer u.guard.Exit(transfer.KindUpload)

	u.store.SetRoomURLCopied(false)

	name := filepath.Base(path)
	f, size, err := openRegular(path)
	if err != nil {
		return u.fail(name, err)
	}
	defer func() { _ = f.Close() }()

	upload := state.UploadState{Phase: state.UploadRequesting, FileName: name, Size: size}
	u.store.SetUpload(upload)

	target, err := u.api.RequestUpload(ctx, u.roomID, name)
	if err != nil {
		return u.fail(name, err)
	}

	upload.Phase = state.UploadTransferring
	u.store.SetUpload(upload)
	sink := newProgressSink(u.progressEvery, u.store.SetUploadPercent)
	if err := u.api.PutObject(ctx, target.UploadURL, f, size, sink.report); err != nil {
		return u.fail(name, err)
	}

	upload.Phase = state.UploadFinalizing
	upload.Percent = 100
	u.store.SetUpload(upload)
	if err := u.api.MarkReady(ctx, u.roomID, target.ItemID); err != nil {
		return u.fail(name, err)
	}

	u.store.SetUpload(state.UploadState{Phase: state.UploadIdle, Percent: 100, FileName: name, Size: size})
	u.store.SetNotice(fmt.Sprintf("Uploaded %s (%s)", name, humanize.Bytes(uint64(size))))
	u.logger.Info("upload complete",
		slog.String("file", name),
		slog.Int64("item_id", target.ItemID),
		slog.Int64("bytes", size),
	)
	return nil
}

// fail maps err to the room outcome. Not-found expires the room; everything
// else leaves the control in Error so it can be retried.
func (u *Uploader) fail(name string, err error) error {
	if obs := u.life.Observe(err); errors.Is(obs, ErrRoomExpired) {
		u.store.SetUpload(state.UploadState{})
		return obs
	}
	u.store.SetUpload(state.UploadState{Phase: state.UploadError, FileName: name, Err: err})
	u.logger.Warn("upload failed", append(errAttrs(err), slog.String("file", name))...)
	return fmt.Errorf("%w: %w", ErrTransferFailed, err)
}

func openRegular(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, 0, fmt.Errorf("%s is not a regular file", path)
	}
	return f, info.Size(), nil
}
