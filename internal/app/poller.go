package app

import (
	"context"
	"sync"
	"time"

	"github.com/five82/bridge/internal/room"
)

const defaultPollInterval = time.Second

// PollerOptions configure StartPollers.
type PollerOptions struct {
	Interval time.Duration // zero uses the default
	// Stagger delays the paste loop by half an interval so the two listings
	// do not hit the backend on the same tick.
	Stagger bool
}

// StartPollers launches the item and paste loops for s. Each tick starts its
// fetch in a new goroutine; the session's transfer guard turns ticks that
// arrive during a slow fetch into no-ops. Both loops stop when ctx is
// cancelled or the room expires. The returned channel is closed once they
// have exited.
func StartPollers(ctx context.Context, s *room.Session, opts PollerOptions) <-chan struct{} {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var delay time.Duration
	if opts.Stagger {
		delay = interval / 2
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pollLoop(ctx, s, interval, 0, func(c context.Context) { _, _ = s.Items.Poll(c) })
	}()
	go func() {
		defer wg.Done()
		pollLoop(ctx, s, interval, delay, func(c context.Context) { _, _ = s.Pastes.Poll(c) })
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// pollLoop calls poll right after delay and then on every tick. Poll failures
// are recorded in the store by the pollers themselves.
func pollLoop(ctx context.Context, s *room.Session, interval, delay time.Duration, poll func(context.Context)) {
	expired := s.Lifecycle.Done()
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-expired:
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var inflight sync.WaitGroup
	defer inflight.Wait()
	for {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			poll(s.Context())
		}()

		select {
		case <-ctx.Done():
			return
		case <-expired:
			return
		case <-ticker.C:
		}
	}
}
