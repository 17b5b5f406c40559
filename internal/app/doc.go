// Package app is the composition root for bridge.
//
// Run loads the config file and applies CLI overrides. It opens the log file,
// builds the backend client and opens the first room. Then it hands control to
// the Bubble Tea UI, which blocks until the user quits or the context is
// cancelled.
//
// Opening a room (at launch or when the user asks for a new one) goes through
// launcher.Open:
//
//	NewRoom()            only when no room id is given
//	room.NewSession()    store, guard, lifecycle, pollers, transfer actions
//	Lifecycle.Check()    a missing room opens straight into the expired screen
//	StartPollers()       items every interval, pastes half an interval later
//	prefs.RememberRoom() so the next launch reopens it
//
// Poll failures never stop the loops; the next tick supersedes them. The loops
// end when the session is closed or the room expires.
package app
