package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
	"github.com/five82/bridge/internal/transfer"
)

// DefaultPageSize is the number of items and pastes requested per page.
const DefaultPageSize = 5

// pager holds the 1-based page of one listing.
type pager struct {
	mu   sync.Mutex
	page int
}

func (p *pager) get() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page < 1 {
		return 1
	}
	return p.page
}

func (p *pager) set(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	p.page = n
	p.mu.Unlock()
}

// ItemPoller keeps the visible item page current.
type ItemPoller struct {
	roomID   string
	api      bridge.API
	store    *state.Store
	guard    *transfer.Guard
	life     *Lifecycle
	logger   *slog.Logger
	pageSize int
	pager    pager
}

// Poll fetches the current item page and replaces the stored listing. It
// returns false when another item poll is still outstanding.
func (p *ItemPoller) Poll(ctx context.Context) (bool, error) {
	if p.life.Expired() {
		return false, ErrRoomExpired
	}
	if !p.guard.TryEnter(transfer.KindItems) {
		return false, nil
	}
	defer p.guard.Exit(transfer.KindItems)

	page := p.pager.get()
	resp, err := p.api.ListItems(ctx, bridge.ListQuery{
		RoomID:      p.roomID,
		PageNumber:  page,
		ItemPerPage: p.pageSize,
	})
	if p.life.Expired() {
		return true, ErrRoomExpired
	}
	if err != nil {
		return true, p.pollFailed(ctx, err)
	}
	p.store.ReplaceItems(resp, page)
	return true, nil
}

func (p *ItemPoller) pollFailed(ctx context.Context, err error) error {
	if err = p.life.Observe(err); errors.Is(err, ErrRoomExpired) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.store.RecordError(err)
	p.logger.Debug("item poll failed", errAttrs(err)...)
	return err
}

// Page returns the current 1-based page.
func (p *ItemPoller) Page() int { return p.pager.get() }

// SetPage selects the page fetched by the next poll.
func (p *ItemPoller) SetPage(n int) { p.pager.set(n) }

// PageSize returns the number of items per page.
func (p *ItemPoller) PageSize() int { return p.pageSize }
