package state

// CopyState is the per-paste copy affordance.
type CopyState int

const (
	CopyIdle CopyState = iota
	CopyLoading
	CopyReady
	CopyCopied
	CopyError
)

func (s CopyState) String() string {
	switch s {
	case CopyIdle:
		return "idle"
	case CopyLoading:
		return "loading"
	case CopyReady:
		return "ready"
	case CopyCopied:
		return "copied"
	case CopyError:
		return "error"
	default:
		return "unknown"
	}
}

// Label returns the text shown on a paste entry. preview is the truncated
// listing content.
func (s CopyState) Label(preview string) string {
	switch s {
	case CopyReady:
		return "Press again to copy"
	case CopyCopied:
		return "Copied!"
	case CopyError:
		return "Error!"
	default:
		return preview
	}
}

// CopyEntry is the copy state of one paste plus its full content once fetched.
type CopyEntry struct {
	State   CopyState
	Content string
}

// UploadPhase tracks the presigned upload handshake.
type UploadPhase int

const (
	UploadIdle UploadPhase = iota
	UploadRequesting
	UploadTransferring
	UploadFinalizing
	UploadError
)

func (p UploadPhase) String() string {
	switch p {
	case UploadIdle:
		return "idle"
	case UploadRequesting:
		return "requesting"
	case UploadTransferring:
		return "transferring"
	case UploadFinalizing:
		return "finalizing"
	case UploadError:
		return "error"
	default:
		return "unknown"
	}
}

// Busy reports whether an upload is between its first request and finalize.
func (p UploadPhase) Busy() bool {
	switch p {
	case UploadRequesting, UploadTransferring, UploadFinalizing:
		return true
	default:
		return false
	}
}

// UploadState is the visible state of the upload control.
type UploadState struct {
	Phase    UploadPhase
	Percent  int
	FileName string
	Size     int64
	Err      error
}

// PasteInputState is the state of the "paste from clipboard" control.
type PasteInputState int

const (
	PasteIdle PasteInputState = iota
	PasteLoading
	PasteError
)

func (s PasteInputState) String() string {
	switch s {
	case PasteIdle:
		return "idle"
	case PasteLoading:
		return "loading"
	case PasteError:
		return "error"
	default:
		return "unknown"
	}
}

// Label returns the paste button text.
func (s PasteInputState) Label() string {
	switch s {
	case PasteLoading:
		return "Pasting..."
	case PasteError:
		return "Paste denied by clipboard"
	default:
		return "Press to paste"
	}
}

// DownloadState is the progress of one item download.
type DownloadState struct {
	ItemID   int64
	FileName string
	Percent  int
	Path     string
	Done     bool
	Err      error
}
