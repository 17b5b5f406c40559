// Package room is the synchronization and transfer engine for one bridge
// room.
//
// A Session bundles the pieces that share a room's lifetime:
//
//   - ItemPoller and PastePoller refresh the listings. Each holds its
//     transfer.Guard kind for the length of a fetch, so a tick that arrives
//     while a fetch is outstanding does nothing.
//   - Uploader runs the presigned handshake: upload-presigned, PUT to the
//     returned URL, then ready. The steps run in order on one goroutine.
//   - Copier moves a paste through Idle, Loading, Ready and Copied.
//   - Paster sends clipboard text as a new paste.
//   - Downloader streams an item into the download directory.
//   - Lifecycle promotes any not-found response to room expiry.
//
// Expiry cancels the session context. Results that land afterwards are
// dropped by an Expired check before they reach the store.
package room
