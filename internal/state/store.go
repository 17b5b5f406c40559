package state

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/five82/bridge/internal/bridge"
)

// Snapshot represents the latest room data available to the UI.
type Snapshot struct {
	RoomID string

	Items      []bridge.Item
	ItemsTotal int
	ItemsPage  int

	Pastes      []bridge.Paste
	PastesTotal int
	PastesPage  int

	Copy       map[int64]CopyEntry
	Upload     UploadState
	PasteInput PasteInputState
	// PastePercent is the submit progress of the paste being sent.
	PastePercent int
	Downloads    map[int64]DownloadState

	RoomURLCopied bool
	Notice        string
	Expired       bool

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// CopyEntry returns the copy state for a paste id, Idle when unknown.
func (s Snapshot) CopyEntry(id int64) CopyEntry {
	return s.Copy[id]
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore returns a store for roomID.
func NewStore(roomID string) *Store {
	return &Store{snapshot: Snapshot{RoomID: roomID}}
}

// ReplaceItems full-replaces the visible item page.
func (s *Store) ReplaceItems(resp bridge.QueryResponse[bridge.Item], page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Items = cloneSlice(resp.Items)
	s.snapshot.ItemsTotal = resp.TotalSize
	s.snapshot.ItemsPage = page
	s.markSuccessLocked()
}

// Pastes returns a copy of the visible paste page.
func (s *Store) Pastes() []bridge.Paste {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.snapshot.Pastes)
}

// ReplacePastes replaces the visible paste page. Copy state survives for ids
// still listed; the rest is dropped.
func (s *Store) ReplacePastes(resp bridge.QueryResponse[bridge.Paste], page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Pastes = cloneSlice(resp.Items)
	s.snapshot.PastesTotal = resp.TotalSize
	s.snapshot.PastesPage = page

	if len(s.snapshot.Copy) > 0 {
		keep := make(map[int64]CopyEntry, len(resp.Items))
		for _, p := range resp.Items {
			if entry, ok := s.snapshot.Copy[p.ID]; ok {
				keep[p.ID] = entry
			}
		}
		s.snapshot.Copy = keep
	}
	s.markSuccessLocked()
}

// TouchPastes records a successful paste poll whose listing was unchanged.
// The list and copy state stay as they are; only the total is taken, since a
// paste added on a later page does not change the visible ids.
func (s *Store) TouchPastes(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.PastesTotal = total
	s.markSuccessLocked()
}

// RecordError keeps the previous data and records err for visibility.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

func (s *Store) markSuccessLocked() {
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// TransitionCopy atomically reads the copy entry for id and, when fn returns
// ok, stores the entry fn returned. It reports the entry fn saw and whether
// the transition was applied.
func (s *Store) TransitionCopy(id int64, fn func(cur CopyEntry) (next CopyEntry, ok bool)) (CopyEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snapshot.Copy[id]
	next, ok := fn(cur)
	if !ok {
		return cur, false
	}
	if s.snapshot.Copy == nil {
		s.snapshot.Copy = make(map[int64]CopyEntry)
	}
	s.snapshot.Copy[id] = next
	return cur, true
}

// SetCopy stores the copy entry for id.
func (s *Store) SetCopy(id int64, entry CopyEntry) {
	s.TransitionCopy(id, func(CopyEntry) (CopyEntry, bool) { return entry, true })
}

// SetUpload replaces the upload state.
func (s *Store) SetUpload(u UploadState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Upload = u
}

// SetUploadPercent updates only the progress of the current upload.
func (s *Store) SetUploadPercent(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Upload.Percent = percent
}

// SetPasteInput replaces the paste control state and resets its progress.
func (s *Store) SetPasteInput(st PasteInputState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.PasteInput = st
	s.snapshot.PastePercent = 0
}

// SetPastePercent updates the paste submit progress.
func (s *Store) SetPastePercent(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.PastePercent = percent
}

// SetDownload stores the progress of one item download.
func (s *Store) SetDownload(d DownloadState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Downloads == nil {
		s.snapshot.Downloads = make(map[int64]DownloadState)
	}
	s.snapshot.Downloads[d.ItemID] = d
}

// SetRoomURLCopied toggles the "room URL copied" notice.
func (s *Store) SetRoomURLCopied(copied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RoomURLCopied = copied
}

// SetNotice sets a one-line status message. An empty string clears it.
func (s *Store) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Notice = msg
}

// MarkExpired flags the room as gone.
func (s *Store) MarkExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Expired = true
}

// Expired reports whether the room has been marked expired.
func (s *Store) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Expired
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneSlice(s.snapshot.Items)
	snap.Pastes = cloneSlice(s.snapshot.Pastes)
	snap.Copy = maps.Clone(s.snapshot.Copy)
	snap.Downloads = maps.Clone(s.snapshot.Downloads)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
