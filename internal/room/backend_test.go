package room

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/bridge/internal/bridge"
)

// fakeBackend is an in-memory bridge API plus object storage.
type fakeBackend struct {
	t *testing.T

	mu      sync.Mutex
	rooms   map[string]bool
	items   map[string][]bridge.Item
	pending map[int64]bridge.Item
	objects map[int64][]byte
	pastes  map[string][]bridge.Paste
	nextID  int64
	calls   map[string]int
	events  []string

	// itemsGate, when set, holds every /api/Items listing until it is closed.
	itemsGate     chan struct{}
	itemsInFlight atomic.Int32
	itemsPeak     atomic.Int32
	// storageGate, when set, holds every storage PUT until it is closed.
	storageGate chan struct{}
	// storageStatus, when non-zero, is returned for storage PUTs.
	storageStatus int
	// itemsStatus, when non-zero, is returned for item listings.
	itemsStatus int

	server *httptest.Server
	client *bridge.Client
}

func newFakeBackend(t *testing.T, rooms ...string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		t:       t,
		rooms:   map[string]bool{},
		items:   map[string][]bridge.Item{},
		pending: map[int64]bridge.Item{},
		objects: map[int64][]byte{},
		pastes:  map[string][]bridge.Paste{},
		calls:   map[string]int{},
	}
	for _, r := range rooms {
		b.rooms[r] = true
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)

	client, err := bridge.NewClient(b.server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	b.client = client
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if strings.HasPrefix(r.URL.Path, "/storage/") {
		key = r.Method + " /storage"
	}
	if strings.HasPrefix(r.URL.Path, "/api/Rooms/exists/") {
		key = r.Method + " /api/Rooms/exists"
	}
	b.mu.Lock()
	b.calls[key]++
	b.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.URL.Path == "/api/Rooms/new-room":
		b.mu.Lock()
		id := "room" + strconv.Itoa(len(b.rooms)+1)
		b.rooms[id] = true
		b.mu.Unlock()
		writeJSON(w, id)

	case strings.HasPrefix(r.URL.Path, "/api/Rooms/exists/"):
		writeJSON(w, b.roomAlive(strings.TrimPrefix(r.URL.Path, "/api/Rooms/exists/")))

	case strings.HasPrefix(r.URL.Path, "/api/Rooms/qr/"):
		if !b.roomAlive(strings.TrimPrefix(r.URL.Path, "/api/Rooms/qr/")) {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("\x89PNG-fake"))

	case r.URL.Path == "/api/Items" && r.Method == http.MethodGet:
		n := b.itemsInFlight.Add(1)
		for {
			p := b.itemsPeak.Load()
			if n <= p || b.itemsPeak.CompareAndSwap(p, n) {
				break
			}
		}
		defer b.itemsInFlight.Add(-1)
		if gate := b.gate(&b.itemsGate); gate != nil {
			<-gate
		}
		roomID := q.Get("roomId")
		if !b.roomAlive(roomID) {
			http.NotFound(w, r)
			return
		}
		b.mu.Lock()
		if status := b.itemsStatus; status != 0 {
			b.mu.Unlock()
			http.Error(w, "listing unavailable", status)
			return
		}
		page := paginate(b.items[roomID], q)
		total := len(b.items[roomID])
		b.mu.Unlock()
		writeJSON(w, bridge.QueryResponse[bridge.Item]{Items: page, PageNumber: atoiOr(q.Get("pageNumber"), 1), TotalSize: total})

	case r.URL.Path == "/api/Items/upload-presigned":
		roomID := q.Get("roomId")
		if !b.roomAlive(roomID) {
			http.NotFound(w, r)
			return
		}
		b.mu.Lock()
		b.nextID++
		id := b.nextID
		b.pending[id] = bridge.Item{ID: id, RoomID: roomID, FileName: q.Get("fileName")}
		b.mu.Unlock()
		writeJSON(w, bridge.PresignedUpload{ItemID: id, UploadURL: b.server.URL + "/storage/" + strconv.FormatInt(id, 10)})

	case strings.HasPrefix(r.URL.Path, "/storage/") && r.Method == http.MethodPut:
		if gate := b.gate(&b.storageGate); gate != nil {
			<-gate
		}
		b.mu.Lock()
		status := b.storageStatus
		b.mu.Unlock()
		if status != 0 {
			http.Error(w, "storage unavailable", status)
			return
		}
		if r.Header.Get("Content-Type") != "application/octet-stream" {
			http.Error(w, "bad content type", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(r.Body)
		id := atoiOr(strings.TrimPrefix(r.URL.Path, "/storage/"), 0)
		b.mu.Lock()
		b.objects[int64(id)] = data
		b.events = append(b.events, "put")
		b.mu.Unlock()

	case strings.HasPrefix(r.URL.Path, "/storage/") && r.Method == http.MethodGet:
		id := atoiOr(strings.TrimPrefix(r.URL.Path, "/storage/"), 0)
		b.mu.Lock()
		data, ok := b.objects[int64(id)]
		b.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)

	case r.URL.Path == "/api/Items/ready" && r.Method == http.MethodPost:
		roomID := q.Get("roomId")
		id := int64(atoiOr(q.Get("itemId"), 0))
		b.mu.Lock()
		defer b.mu.Unlock()
		item, ok := b.pending[id]
		if !b.rooms[roomID] || !ok {
			http.NotFound(w, r)
			return
		}
		if _, written := b.objects[id]; !written {
			b.events = append(b.events, "ready-before-put")
			http.Error(w, "object missing", http.StatusConflict)
			return
		}
		delete(b.pending, id)
		b.items[roomID] = append(b.items[roomID], item)
		b.events = append(b.events, "ready")

	case r.URL.Path == "/api/Items/download-presigned":
		if !b.roomAlive(q.Get("roomId")) {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, b.server.URL+"/storage/"+q.Get("itemId"))

	case r.URL.Path == "/api/Pastes/pastes":
		roomID := q.Get("roomId")
		if !b.roomAlive(roomID) {
			http.NotFound(w, r)
			return
		}
		b.mu.Lock()
		all := b.pastes[roomID]
		truncated := make([]bridge.Paste, len(all))
		for i, p := range all {
			if len(p.Content) > 3 {
				p.Content = p.Content[:3]
			}
			truncated[i] = p
		}
		b.mu.Unlock()
		writeJSON(w, bridge.QueryResponse[bridge.Paste]{Items: paginate(truncated, q), PageNumber: atoiOr(q.Get("pageNumber"), 1), TotalSize: len(all)})

	case r.URL.Path == "/api/Pastes/paste":
		roomID := q.Get("roomId")
		id := int64(atoiOr(q.Get("pasteId"), 0))
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.rooms[roomID] || q.Get("truncate") != "false" {
			http.NotFound(w, r)
			return
		}
		for _, p := range b.pastes[roomID] {
			if p.ID == id {
				writeJSON(w, p)
				return
			}
		}
		http.NotFound(w, r)

	case r.URL.Path == "/api/Pastes" && r.Method == http.MethodPut:
		roomID := q.Get("roomId")
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.rooms[roomID] {
			http.NotFound(w, r)
			return
		}
		b.nextID++
		b.pastes[roomID] = append(b.pastes[roomID], bridge.Paste{ID: b.nextID, RoomID: roomID, Content: body.Content})

	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) gate(ch *chan struct{}) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *ch
}

func (b *fakeBackend) roomAlive(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rooms[id]
}

func (b *fakeBackend) expire(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, id)
}

func (b *fakeBackend) callCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *fakeBackend) eventLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func (b *fakeBackend) addPaste(roomID, content string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.pastes[roomID] = append(b.pastes[roomID], bridge.Paste{ID: b.nextID, RoomID: roomID, Content: content})
	return b.nextID
}

func (b *fakeBackend) addItem(roomID, name string, data []byte) bridge.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	item := bridge.Item{ID: b.nextID, RoomID: roomID, FileName: name}
	b.items[roomID] = append(b.items[roomID], item)
	b.objects[item.ID] = data
	return item
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func paginate[T any](all []T, q map[string][]string) []T {
	page := atoiOr(first(q["pageNumber"]), 1)
	per := atoiOr(first(q["itemPerPage"]), DefaultPageSize)
	start := (page - 1) * per
	if start >= len(all) || start < 0 {
		return []T{}
	}
	end := min(start+per, len(all))
	return append([]T(nil), all[start:end]...)
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
