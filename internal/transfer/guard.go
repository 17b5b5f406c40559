// Package transfer provides a keyed single-flight guard for room operations.
//
// Each operation kind (item polling, paste polling, upload, paste submit, one
// download per item) may have at most one active holder. A caller that fails
// TryEnter skips its work instead of queueing behind the holder.
package transfer

import (
	"strconv"
	"sync"
)

// Kind names a class of operation that must not overlap with itself.
type Kind string

// Operation kinds used by the room engine.
const (
	KindItems  Kind = "download-items"
	KindPastes Kind = "download-pastes"
	KindUpload Kind = "upload"
	KindPaste  Kind = "paste"
)

// DownloadKind returns the guard kind for downloading a single item.
func DownloadKind(itemID int64) Kind {
	return Kind("download-item/" + strconv.FormatInt(itemID, 10))
}

// Guard is a set of held kinds. The zero value is ready to use.
type Guard struct {
	mu     sync.Mutex
	active map[Kind]struct{}
}

// TryEnter marks kind active and returns true when it was free.
// It returns false, changing nothing, when kind is already held.
func (g *Guard) TryEnter(kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		g.active = make(map[Kind]struct{})
	}
	if _, held := g.active[kind]; held {
		return false
	}
	g.active[kind] = struct{}{}
	return true
}

// Exit releases kind. Releasing a free kind is a no-op.
func (g *Guard) Exit(kind Kind) {
	g.mu.Lock()
	delete(g.active, kind)
	g.mu.Unlock()
}

// Active reports whether kind is currently held.
func (g *Guard) Active(kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.active[kind]
	return held
}

// Do runs fn while holding kind. It returns false without calling fn when
// kind is already held. The kind is released on every exit path, panics
// included.
func (g *Guard) Do(kind Kind, fn func()) bool {
	if !g.TryEnter(kind) {
		return false
	}
	defer g.Exit(kind)
	fn()
	return true
}
