package room

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/clipboard"
	"github.com/five82/bridge/internal/state"
)

// Copier drives the per-paste copy state machine. The first press fetches
// the untruncated content, the next press writes it to the clipboard.
type Copier struct {
	roomID string
	api    bridge.API
	store  *state.Store
	clip   clipboard.Clipboard
	life   *Lifecycle
	logger *slog.Logger
}

// Press advances the copy state of paste. Presses while a fetch is
// outstanding are ignored.
func (c *Copier) Press(ctx context.Context, paste bridge.Paste) error {
	if c.life.Expired() {
		return ErrRoomExpired
	}
	prev, started := c.store.TransitionCopy(paste.ID, func(cur state.CopyEntry) (state.CopyEntry, bool) {
		switch cur.State {
		case state.CopyIdle, state.CopyError:
			return state.CopyEntry{State: state.CopyLoading}, true
		default:
			return cur, false
		}
	})

	if !started {
		switch prev.State {
		case state.CopyReady, state.CopyCopied:
			return c.write(paste.ID, prev.Content)
		default:
			return nil
		}
	}

	full, err := c.api.FetchPaste(ctx, c.roomID, paste.ID)
	if err != nil {
		c.settle(paste.ID, state.CopyEntry{State: state.CopyError})
		err = c.life.Observe(err)
		c.logger.Warn("paste fetch failed", append(errAttrs(err), slog.Int64("paste_id", paste.ID))...)
		return err
	}
	c.settle(paste.ID, state.CopyEntry{State: state.CopyReady, Content: full.Content})
	return nil
}

// settle stores the fetch result only while the entry is still loading. A
// paste that left the listing mid-fetch has had its entry pruned and stays
// pruned.
func (c *Copier) settle(id int64, next state.CopyEntry) {
	c.store.TransitionCopy(id, func(cur state.CopyEntry) (state.CopyEntry, bool) {
		return next, cur.State == state.CopyLoading
	})
}

func (c *Copier) write(id int64, content string) error {
	if err := c.clip.WriteText(content); err != nil {
		c.store.SetCopy(id, state.CopyEntry{State: state.CopyError})
		c.logger.Warn("clipboard write failed", slog.Int64("paste_id", id), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrClipboardCopyFailed, err)
	}
	c.store.SetCopy(id, state.CopyEntry{State: state.CopyCopied, Content: content})
	return nil
}
