// Package bridge provides an HTTP client for the bridge room backend API.
//
// # Overview
//
// A bridge room is an ephemeral, server-owned space where visitors share files
// ("items") and clipboard text ("pastes"). This package is the transport layer:
// it knows the REST surface under /api, encodes queries, decodes the JSON
// envelopes, and moves raw bytes to and from presigned storage URLs. It holds
// no view state and makes no policy decisions about retries or expiry.
//
// # Files
//
//   - client.go: Client construction and the /api calls
//   - transfer.go: presigned PUT/GET byte transfers with progress reporting
//   - types.go: data structures mirroring the backend schema
//   - errors.go: StatusError and the ErrNotFound sentinel
//
// # Endpoints
//
//	GET  /api/Rooms/new-room                              -> NewRoom
//	GET  /api/Rooms/exists/{roomId}                       -> RoomExists
//	GET  /api/Rooms/qr/{roomId}                           -> FetchQR
//	GET  /api/Items?roomId&pageNumber&itemPerPage         -> ListItems
//	GET  /api/Items/upload-presigned?roomId&fileName      -> RequestUpload
//	PUT  {uploadUrl}                                      -> PutObject
//	POST /api/Items/ready?roomId&itemId                   -> MarkReady
//	GET  /api/Items/download-presigned?roomId&itemId      -> DownloadURL
//	GET  {downloadUrl}                                    -> GetObject
//	GET  /api/Pastes/pastes?roomId&pageNumber&itemPerPage -> ListPastes
//	GET  /api/Pastes/paste?roomId&pasteId&truncate=false  -> FetchPaste
//	PUT  /api/Pastes?roomId  {content}                    -> SubmitPaste
//
// # Errors
//
// Any response with status >= 400 is returned as *StatusError. A 404 matches
// ErrNotFound:
//
//	if errors.Is(err, bridge.ErrNotFound) {
//		// the room is gone
//	}
//
// Whether a not-found means "room expired" is decided by the caller (see the
// room package), not here.
//
// # Request IDs
//
// Every /api request carries a fresh X-Request-ID header. StatusError records
// it so failures can be correlated with backend logs.
package bridge
