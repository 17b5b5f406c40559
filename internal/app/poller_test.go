package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/bridge/internal/bridge"
	"github.com/five82/bridge/internal/clipboard"
	"github.com/five82/bridge/internal/config"
	"github.com/five82/bridge/internal/prefs"
	"github.com/five82/bridge/internal/room"
)

// stubAPI serves listings from memory and counts calls.
type stubAPI struct {
	bridge.API

	mu         sync.Mutex
	itemCalls  []time.Time
	pasteCalls []time.Time
	missing    map[string]bool
	newRoomID  string
	itemsErr   error
	itemsGate  chan struct{}

	inFlight     atomic.Int32
	peakInFlight atomic.Int32
}

func (a *stubAPI) NewRoom(context.Context) (string, error) { return a.newRoomID, nil }

func (a *stubAPI) RoomExists(_ context.Context, roomID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.missing[roomID], nil
}

func (a *stubAPI) ListItems(ctx context.Context, _ bridge.ListQuery) (bridge.QueryResponse[bridge.Item], error) {
	n := a.inFlight.Add(1)
	defer a.inFlight.Add(-1)
	for {
		peak := a.peakInFlight.Load()
		if n <= peak || a.peakInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	a.mu.Lock()
	a.itemCalls = append(a.itemCalls, time.Now())
	gate, err := a.itemsGate, a.itemsErr
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return bridge.QueryResponse[bridge.Item]{}, ctx.Err()
		}
	}
	return bridge.QueryResponse[bridge.Item]{}, err
}

func (a *stubAPI) ListPastes(context.Context, bridge.ListQuery) (bridge.QueryResponse[bridge.Paste], error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pasteCalls = append(a.pasteCalls, time.Now())
	return bridge.QueryResponse[bridge.Paste]{}, nil
}

func (a *stubAPI) counts() (items, pastes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.itemCalls), len(a.pasteCalls)
}

func (a *stubAPI) firstCalls() (item, paste time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.itemCalls) > 0 {
		item = a.itemCalls[0]
	}
	if len(a.pasteCalls) > 0 {
		paste = a.pasteCalls[0]
	}
	return item, paste
}

func newSession(t *testing.T, api bridge.API, roomID string) *room.Session {
	t.Helper()
	s, err := room.NewSession(context.Background(), room.Config{
		API:         api,
		Clipboard:   &clipboard.Memory{},
		RoomID:      roomID,
		DownloadDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pollers did not stop")
	}
}

func TestStartPollersPollsBothListings(t *testing.T) {
	api := &stubAPI{}
	s := newSession(t, api, "abc")

	done := StartPollers(s.Context(), s, PollerOptions{Interval: 20 * time.Millisecond, Stagger: true})
	waitFor(t, "three polls of each listing", func() bool {
		items, pastes := api.counts()
		return items >= 3 && pastes >= 3
	})

	s.Close()
	waitClosed(t, done)

	items, pastes := api.counts()
	time.Sleep(60 * time.Millisecond)
	if i, p := api.counts(); i != items || p != pastes {
		t.Fatalf("polling continued after close: items %d->%d pastes %d->%d", items, i, pastes, p)
	}
}

func TestStartPollersStaggersPastes(t *testing.T) {
	api := &stubAPI{}
	s := newSession(t, api, "abc")
	interval := 200 * time.Millisecond

	start := time.Now()
	StartPollers(s.Context(), s, PollerOptions{Interval: interval, Stagger: true})
	waitFor(t, "first paste poll", func() bool {
		_, pastes := api.counts()
		return pastes >= 1
	})

	item, paste := api.firstCalls()
	if d := item.Sub(start); d > interval/4 {
		t.Fatalf("first item poll after %v, want immediate", d)
	}
	if d := paste.Sub(start); d < interval/2-20*time.Millisecond {
		t.Fatalf("first paste poll after %v, want about %v", d, interval/2)
	}
}

func TestStartPollersSingleFlight(t *testing.T) {
	api := &stubAPI{itemsGate: make(chan struct{})}
	s := newSession(t, api, "abc")

	StartPollers(s.Context(), s, PollerOptions{Interval: 5 * time.Millisecond})
	waitFor(t, "first item poll", func() bool {
		items, _ := api.counts()
		return items >= 1
	})
	time.Sleep(60 * time.Millisecond)

	if items, _ := api.counts(); items != 1 {
		t.Fatalf("item fetches = %d while one was in flight, want 1", items)
	}
	if peak := api.peakInFlight.Load(); peak != 1 {
		t.Fatalf("peak concurrent item fetches = %d, want 1", peak)
	}

	close(api.itemsGate)
	waitFor(t, "polling to resume", func() bool {
		items, _ := api.counts()
		return items >= 2
	})
}

func TestStartPollersStopOnExpiry(t *testing.T) {
	api := &stubAPI{itemsErr: &bridge.StatusError{StatusCode: 404, Path: "/api/Items"}}
	s := newSession(t, api, "abc")

	done := StartPollers(context.Background(), s, PollerOptions{Interval: 10 * time.Millisecond})
	waitClosed(t, done)

	if !s.Lifecycle.Expired() {
		t.Fatal("room should be expired after a not-found listing")
	}
	items, _ := api.counts()
	time.Sleep(50 * time.Millisecond)
	if after, _ := api.counts(); after != items {
		t.Fatalf("item polls continued after expiry: %d -> %d", items, after)
	}
}

func TestStartRoom(t *testing.T) {
	withHistory := prefs.Prefs{RecentRooms: []string{"last", "older"}}
	tests := []struct {
		name string
		opts Options
		p    prefs.Prefs
		want string
	}{
		{"explicit room", Options{RoomID: " abc "}, withHistory, "abc"},
		{"new wins over explicit", Options{RoomID: "abc", NewRoom: true}, withHistory, ""},
		{"last room", Options{}, withHistory, "last"},
		{"no history", Options{}, prefs.Prefs{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startRoom(tt.opts, tt.p); got != tt.want {
				t.Fatalf("startRoom = %q, want %q", got, tt.want)
			}
		})
	}
}

func newLauncher(t *testing.T, api bridge.API) *launcher {
	t.Helper()
	cfg := config.Default()
	cfg.PollInterval = 20 * time.Millisecond
	cfg.DownloadDir = t.TempDir()
	return &launcher{
		parent:    context.Background(),
		api:       api,
		clip:      &clipboard.Memory{},
		cfg:       cfg,
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		logger:    slog.New(slog.DiscardHandler),
	}
}

func TestLauncherCreatesAndRemembersRoom(t *testing.T) {
	api := &stubAPI{newRoomID: "fresh"}
	l := newLauncher(t, api)

	s, err := l.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)

	if s.RoomID() != "fresh" {
		t.Fatalf("RoomID = %q, want fresh", s.RoomID())
	}
	waitFor(t, "pollers to start", func() bool {
		items, _ := api.counts()
		return items >= 1
	})
	p, _ := prefs.Load(l.prefsPath)
	if last, ok := p.LastRoom(); !ok || last != "fresh" {
		t.Fatalf("LastRoom = %q, %v; want fresh", last, ok)
	}
}

func TestLauncherMissingRoomOpensExpired(t *testing.T) {
	api := &stubAPI{missing: map[string]bool{"gone": true}}
	l := newLauncher(t, api)

	s, err := l.Open(context.Background(), "gone")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)

	if !s.Lifecycle.Expired() || !s.Store.Snapshot().Expired {
		t.Fatal("missing room should open expired")
	}
	time.Sleep(50 * time.Millisecond)
	if items, pastes := api.counts(); items != 0 || pastes != 0 {
		t.Fatalf("expired room was polled: items=%d pastes=%d", items, pastes)
	}
	p, _ := prefs.Load(l.prefsPath)
	if _, ok := p.LastRoom(); ok {
		t.Fatal("expired room should not be remembered")
	}
}
