package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API defines the backend calls used by the room engine.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	NewRoom(ctx context.Context) (string, error)
	RoomExists(ctx context.Context, roomID string) (bool, error)
	FetchQR(ctx context.Context, roomID string) ([]byte, error)
	ListItems(ctx context.Context, query ListQuery) (QueryResponse[Item], error)
	RequestUpload(ctx context.Context, roomID, fileName string) (PresignedUpload, error)
	PutObject(ctx context.Context, uploadURL string, body io.Reader, size int64, progress ProgressFunc) error
	MarkReady(ctx context.Context, roomID string, itemID int64) error
	DownloadURL(ctx context.Context, roomID string, itemID int64) (string, error)
	GetObject(ctx context.Context, downloadURL string, w io.Writer, progress ProgressFunc) (int64, error)
	ListPastes(ctx context.Context, query ListQuery) (QueryResponse[Paste], error)
	FetchPaste(ctx context.Context, roomID string, pasteID int64) (Paste, error)
	SubmitPaste(ctx context.Context, roomID, content string, progress ProgressFunc) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the bridge HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	transfer  *http.Client
	userAgent string
}

const (
	defaultOrigin    = "127.0.0.1:5000"
	defaultUserAgent = "bridge/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 512
	maxTextBody      = 64 << 10
)

// NewClient builds a Client for the backend at origin (scheme://host[:port][/prefix]).
// A bare host:port is treated as plain http.
func NewClient(origin string) (*Client, error) {
	base, err := parseBaseURL(origin)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		// Byte transfers are bounded by the caller's context, not a fixed timeout.
		transfer:  &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// NewRoom asks the backend to allocate a room and returns its id.
func (c *Client) NewRoom(ctx context.Context) (string, error) {
	var roomID string
	if err := c.do(ctx, http.MethodGet, "/api/Rooms/new-room", nil, nil, &roomID); err != nil {
		return "", err
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", fmt.Errorf("new room: empty room id")
	}
	return roomID, nil
}

// RoomExists reports whether the room is still alive.
func (c *Client) RoomExists(ctx context.Context, roomID string) (bool, error) {
	if strings.TrimSpace(roomID) == "" {
		return false, fmt.Errorf("room id required")
	}
	var exists bool
	if err := c.doURL(ctx, http.MethodGet, roomPath("/api/Rooms/exists/", roomID), nil, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FetchQR returns the server-rendered QR image for the room URL.
func (c *Client) FetchQR(ctx context.Context, roomID string) ([]byte, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("room id required")
	}
	var buf bytes.Buffer
	if err := c.doURL(ctx, http.MethodGet, roomPath("/api/Rooms/qr/", roomID), nil, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListItems retrieves one page of the room's items.
func (c *Client) ListItems(ctx context.Context, query ListQuery) (QueryResponse[Item], error) {
	var payload QueryResponse[Item]
	if err := c.do(ctx, http.MethodGet, "/api/Items", listValues(query), nil, &payload); err != nil {
		return QueryResponse[Item]{}, err
	}
	return payload, nil
}

// RequestUpload pre-allocates an item id and a write target for fileName.
func (c *Client) RequestUpload(ctx context.Context, roomID, fileName string) (PresignedUpload, error) {
	if strings.TrimSpace(fileName) == "" {
		return PresignedUpload{}, fmt.Errorf("file name required")
	}
	values := url.Values{}
	values.Set("roomId", roomID)
	values.Set("fileName", fileName)
	var payload PresignedUpload
	if err := c.do(ctx, http.MethodGet, "/api/Items/upload-presigned", values, nil, &payload); err != nil {
		return PresignedUpload{}, err
	}
	if payload.UploadURL == "" {
		return PresignedUpload{}, fmt.Errorf("upload-presigned: empty upload url")
	}
	return payload, nil
}

// MarkReady tells the backend the item's bytes are fully written.
func (c *Client) MarkReady(ctx context.Context, roomID string, itemID int64) error {
	values := url.Values{}
	values.Set("roomId", roomID)
	values.Set("itemId", strconv.FormatInt(itemID, 10))
	return c.do(ctx, http.MethodPost, "/api/Items/ready", values, nil, nil)
}

// DownloadURL returns a short-lived read URL for the item's bytes.
func (c *Client) DownloadURL(ctx context.Context, roomID string, itemID int64) (string, error) {
	values := url.Values{}
	values.Set("roomId", roomID)
	values.Set("itemId", strconv.FormatInt(itemID, 10))
	var link string
	if err := c.do(ctx, http.MethodGet, "/api/Items/download-presigned", values, nil, &link); err != nil {
		return "", err
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("download-presigned: empty url")
	}
	return link, nil
}

// ListPastes retrieves one page of the room's pastes with truncated content.
func (c *Client) ListPastes(ctx context.Context, query ListQuery) (QueryResponse[Paste], error) {
	var payload QueryResponse[Paste]
	if err := c.do(ctx, http.MethodGet, "/api/Pastes/pastes", listValues(query), nil, &payload); err != nil {
		return QueryResponse[Paste]{}, err
	}
	return payload, nil
}

// FetchPaste retrieves a paste with its full, untruncated content.
func (c *Client) FetchPaste(ctx context.Context, roomID string, pasteID int64) (Paste, error) {
	values := url.Values{}
	values.Set("roomId", roomID)
	values.Set("pasteId", strconv.FormatInt(pasteID, 10))
	values.Set("truncate", "false")
	var payload Paste
	if err := c.do(ctx, http.MethodGet, "/api/Pastes/paste", values, nil, &payload); err != nil {
		return Paste{}, err
	}
	return payload, nil
}

// SubmitPaste appends a new paste to the room.
func (c *Client) SubmitPaste(ctx context.Context, roomID, content string, progress ProgressFunc) error {
	body, err := json.Marshal(pasteRequest{Content: content})
	if err != nil {
		return fmt.Errorf("encode paste: %w", err)
	}
	values := url.Values{}
	values.Set("roomId", roomID)
	return c.do(ctx, http.MethodPut, "/api/Pastes", values, &requestBody{
		reader:      newProgressReader(bytes.NewReader(body), int64(len(body)), progress),
		size:        int64(len(body)),
		contentType: "application/json",
	}, nil)
}

type requestBody struct {
	reader      io.Reader
	size        int64
	contentType string
}

func listValues(query ListQuery) url.Values {
	values := url.Values{}
	values.Set("roomId", query.RoomID)
	page := query.PageNumber
	if page <= 0 {
		page = 1
	}
	values.Set("pageNumber", strconv.Itoa(page))
	if query.ItemPerPage > 0 {
		values.Set("itemPerPage", strconv.Itoa(query.ItemPerPage))
	}
	return values
}

func (c *Client) do(ctx context.Context, method, path string, values url.Values, body *requestBody, dest any) error {
	rel := &url.URL{Path: path}
	if len(values) > 0 {
		rel.RawQuery = values.Encode()
	}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body *requestBody, dest any) error {
	reqURL := c.resolve(rel)
	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.ContentLength = body.size
		req.Header.Set("Content-Type", body.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Path:       rel.Path,
			RequestID:  requestID,
			Body:       errorBody(resp.Body),
		}
	}
	return decodeInto(resp.Body, dest)
}

// roomPath appends roomID as a single path segment. Path holds the decoded
// form and RawPath the escaped one, so reserved characters are escaped once.
func roomPath(prefix, roomID string) *url.URL {
	return &url.URL{
		Path:    prefix + roomID,
		RawPath: prefix + url.PathEscape(roomID),
	}
}

func (c *Client) resolve(rel *url.URL) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + rel.Path
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + rel.EscapedPath()
	if u.RawPath == u.EscapedPath() {
		u.RawPath = ""
	}
	u.RawQuery = rel.RawQuery
	return &u
}

func decodeInto(body io.Reader, dest any) error {
	switch d := dest.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		if _, err := d.ReadFrom(body); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	case *string:
		text, err := decodeText(body)
		if err != nil {
			return err
		}
		*d = text
		return nil
	}
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeText accepts both a JSON string and a raw text body.
func decodeText(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxTextBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var out string
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	}
	return trimmed, nil
}

func errorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return strings.TrimSpace(string(data))
}

func parseBaseURL(origin string) (*url.URL, error) {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		trimmed = defaultOrigin
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend origin %q: %w", origin, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse backend origin %q: missing host", origin)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
