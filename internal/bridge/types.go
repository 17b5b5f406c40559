package bridge

// Item is the metadata of one uploaded file. The bytes live in object storage
// and are reached through DownloadURL.
type Item struct {
	ID       int64  `json:"id"`
	RoomID   string `json:"roomId"`
	FileName string `json:"fileName"`
}

// Paste is one shared text snippet. Content is truncated in listings and
// complete only when fetched through FetchPaste.
type Paste struct {
	ID      int64  `json:"id"`
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// QueryResponse is the page-at-a-time listing envelope used by /api/Items and
// /api/Pastes/pastes.
type QueryResponse[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"pageNumber"`
	TotalSize  int `json:"totalSize"`
}

// PresignedUpload is a server-allocated item id plus a write-once URL for the
// item's bytes.
type PresignedUpload struct {
	ItemID    int64  `json:"itemId"`
	UploadURL string `json:"uploadUrl"`
}

// ListQuery selects a page of a room listing.
type ListQuery struct {
	RoomID      string
	PageNumber  int
	ItemPerPage int
}

// ProgressFunc receives cumulative transferred bytes and the expected total.
// total is zero or negative when the length is unknown.
type ProgressFunc func(loaded, total int64)

type pasteRequest struct {
	Content string `json:"content"`
}
