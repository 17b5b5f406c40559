package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/clipboard"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

// Paster submits the clipboard contents as a new paste.
type Paster struct {
	roomID        string
	api           bridge.API
	store         *state.Store
	guard         *transfer.Guard
	clip          clipboard.Clipboard
	life          *Lifecycle
	logger        *slog.Logger
	progressEvery time.Duration
}

// Submit reads the clipboard and appends it to the room. A refused read
// leaves the control in Error until the next press. After the request the
// control returns to Idle whatever the outcome.
func (p *Paster) Submit(ctx context.Context) error {
	if p.life.Expired() {
		return ErrRoomExpired
	}
	if !p.guard.TryEnter(transfer.KindPaste) {
		return ErrBusy
	}
	defer p.guard.Exit(transfer.KindPaste)

	p.store.SetRoomURLCopied(false)

	text, err := p.clip.ReadText()
	if err != nil {
		p.store.SetPasteInput(state.PasteError)
		p.logger.Warn("clipboard read denied", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrClipboardDenied, err)
	}
	if text == "" {
		p.store.SetPasteInput(state.PasteIdle)
		p.store.SetNotice("Clipboard is empty")
		return nil
	}

	p.store.SetPasteInput(state.PasteLoading)
	defer p.store.SetPasteInput(state.PasteIdle)

	sink := newProgressSink(p.progressEvery, p.store.SetPastePercent)
	if err := p.api.SubmitPaste(ctx, p.roomID, text, sink.report); err != nil {
		if obs := p.life.Observe(err); errors.Is(obs, ErrRoomExpired) {
			return obs
		}
		p.logger.Warn("paste submit failed", errAttrs(err)...)
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	p.logger.Info("paste submitted", slog.Int("bytes", len(text)))
	return nil
}
