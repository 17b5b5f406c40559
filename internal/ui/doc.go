// Package ui is the Bubble Tea front end for a bridge room.
//
// The Model renders one of two screens. The room screen shows the header
// (room id, link, offline hint), the upload control with its progress bar,
// the current page of files, the paste button and the current page of
// pastes. The expired screen replaces it once the backend reports the room
// gone and only offers opening a new room or quitting.
//
// All room state lives in a state.Store owned by the room.Session. The model
// copies a snapshot on every refresh tick and after every action, so views
// never read shared state directly. Actions (upload, paste, copy, download,
// copy link, save QR) run as tea.Cmds against the session and report back
// with an actionMsg tagged with the room id; results for a room that is no
// longer open are dropped.
//
// Key bindings are defined in keys.go and listed by the help overlay.
// Themes are cycled with T and persisted through the prefs package.
package ui
