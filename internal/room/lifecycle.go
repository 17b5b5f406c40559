package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/state"
)

// existenceChecker is the part of bridge.API the lifecycle needs.
type existenceChecker interface {
	RoomExists(ctx context.Context, roomID string) (bool, error)
}

// Lifecycle turns not-found responses into room expiry. Expiry is one-way:
// it cancels the session context, marks the store, and closes Done.
type Lifecycle struct {
	roomID string
	api    existenceChecker
	store  *state.Store
	logger *slog.Logger
	cancel context.CancelFunc

	once    sync.Once
	expired atomic.Bool
	done    chan struct{}
}

// NewLifecycle returns a lifecycle for roomID. cancel is invoked on expiry
// and may be nil.
func NewLifecycle(roomID string, api existenceChecker, store *state.Store, logger *slog.Logger, cancel context.CancelFunc) *Lifecycle {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lifecycle{
		roomID: roomID,
		api:    api,
		store:  store,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Check asks the backend whether the room exists and expires it when it
// does not. Transport failures are returned without expiring.
func (l *Lifecycle) Check(ctx context.Context) (bool, error) {
	exists, err := l.api.RoomExists(ctx, l.roomID)
	if err != nil {
		if err = l.Observe(err); errors.Is(err, ErrRoomExpired) {
			return false, nil
		}
		return false, err
	}
	if !exists {
		l.Expire()
		return false, nil
	}
	return true, nil
}

// Observe expires the room when err is a not-found response and returns
// ErrRoomExpired. Other errors pass through unchanged.
func (l *Lifecycle) Observe(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRoomExpired) {
		return err
	}
	if bridge.IsNotFound(err) {
		l.Expire()
		return ErrRoomExpired
	}
	if l.Expired() {
		// Cancelled by an earlier expiry.
		return ErrRoomExpired
	}
	return err
}

// Expire marks the room gone. Safe to call more than once.
func (l *Lifecycle) Expire() {
	l.once.Do(func() {
		l.expired.Store(true)
		if l.store != nil {
			l.store.MarkExpired()
		}
		if l.cancel != nil {
			l.cancel()
		}
		close(l.done)
		l.logger.Info("room expired", slog.String("room_id", l.roomID))
	})
}

// Expired reports whether Expire has run.
func (l *Lifecycle) Expired() bool {
	return l.expired.Load()
}

// Done is closed when the room expires.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// RoomID returns the room this lifecycle guards.
func (l *Lifecycle) RoomID() string {
	return l.roomID
}
