// Package state provides thread-safe view state for one bridge room.
//
// # Overview
//
// The Store is the meeting point between the background pollers, the
// user-triggered transfer commands, and the UI refresh loop:
//
//	Producers:                      Consumer (UI):
//	┌──────────────────────┐       ┌──────────────────┐
//	│ ItemPoller           │       │                  │
//	│ PastePoller          │──────→│ store.Snapshot() │
//	│ Uploader / Copier    │(mutex)│       ↓          │
//	│ Paster / Downloader  │       │   render view    │
//	└──────────────────────┘       └──────────────────┘
//
// Producers write through narrow setters. The UI reads a Snapshot on its own
// tick; slices and maps in a Snapshot are copies and may be kept freely.
//
// # Closed state types
//
// Control states are small int enums rather than flags:
//
//   - CopyState: Idle, Loading, Ready, Copied, Error (per paste)
//   - UploadPhase: Idle, Requesting, Transferring, Finalizing, Error
//   - PasteInputState: Idle, Loading, Error
//
// Labels are pure functions of these values (CopyState.Label,
// PasteInputState.Label).
//
// # Copy transitions
//
// TransitionCopy runs a check-and-set under the write lock so two presses on
// the same paste cannot both start a fetch. ReplacePastes keeps copy entries
// for paste ids that are still listed and drops the rest.
//
// # Error Propagation
//
// RecordError keeps the previous listing and stores the error with a failure
// counter, mirroring how a failed poll is superseded by the next one:
//
//	store.RecordError(err)
//	→ Items, Pastes unchanged
//	→ LastError = err
//	→ ConsecutiveFailures++
//
// Any successful listing resets LastError and the counter.
package state
