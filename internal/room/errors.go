package room

import (
	"errors"
	"log/slog"

	"github.com/five82/bridge/internal/bridge"
)

var (
	// ErrRoomExpired means the backend no longer knows the room. It is
	// terminal for the session.
	ErrRoomExpired = errors.New("room expired")
	// ErrTransferFailed wraps any other failure of an upload, paste or
	// download.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrClipboardDenied means the clipboard could not be read.
	ErrClipboardDenied = errors.New("clipboard read denied")
	// ErrClipboardCopyFailed means the clipboard could not be written.
	ErrClipboardCopyFailed = errors.New("clipboard write failed")
	// ErrBusy is returned when the same operation is already running.
	ErrBusy = errors.New("operation already in progress")
)

// errAttrs returns log attributes for err, including the backend request id
// when there is one.
func errAttrs(err error) []any {
	attrs := []any{slog.Any("error", err)}
	var statusErr *bridge.StatusError
	if errors.As(err, &statusErr) && statusErr.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", statusErr.RequestID))
	}
	return attrs
}
