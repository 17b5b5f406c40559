package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

// PastesChanged reports whether next differs from prev by length or by the id
// at any position. Content is not compared; a paste never changes once its id
// exists.
func PastesChanged(prev, next []bridge.Paste) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i].ID != next[i].ID {
			return true
		}
	}
	return false
}

// PastePoller keeps the visible paste page current without disturbing copy
// state when nothing changed.
type PastePoller struct {
	roomID   string
	api      bridge.API
	store    *state.Store
	guard    *transfer.Guard
	life     *Lifecycle
	logger   *slog.Logger
	pageSize int
	pager    pager
}

// Poll fetches the current paste page and replaces the stored listing when
// the id sequence changed. It reports whether a fetch was made.
func (p *PastePoller) Poll(ctx context.Context) (bool, error) {
	if p.life.Expired() {
		return false, ErrRoomExpired
	}
	if !p.guard.TryEnter(transfer.KindPastes) {
		return false, nil
	}
	defer p.guard.Exit(transfer.KindPastes)

	page := p.pager.get()
	resp, err := p.api.ListPastes(ctx, bridge.ListQuery{
		RoomID:      p.roomID,
		PageNumber:  page,
		ItemPerPage: p.pageSize,
	})
	if p.life.Expired() {
		return true, ErrRoomExpired
	}
	if err != nil {
		if err = p.life.Observe(err); errors.Is(err, ErrRoomExpired) {
			return true, err
		}
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		p.store.RecordError(err)
		p.logger.Debug("paste poll failed", errAttrs(err)...)
		return true, err
	}

	if !PastesChanged(p.store.Pastes(), resp.Items) {
		p.store.TouchPastes(resp.TotalSize)
		return true, nil
	}
	p.store.ReplacePastes(resp, page)
	return true, nil
}

// Page returns the current 1-based page.
func (p *PastePoller) Page() int { return p.pager.get() }

// SetPage selects the page fetched by the next poll.
func (p *PastePoller) SetPage(n int) { p.pager.set(n) }

// PageSize returns the number of pastes per page.
func (p *PastePoller) PageSize() int { return p.pageSize }
