package bridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PutObject streams body to a presigned write URL as an opaque octet stream.
// size is sent as Content-Length and used as the progress total.
func (c *Client) PutObject(ctx context.Context, uploadURL string, body io.Reader, size int64, progress ProgressFunc) error {
	target, err := parseTransferURL(uploadURL)
	if err != nil {
		return err
	}
	reader := newProgressReader(body, size, progress)
	if size == 0 {
		reader = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), reader)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.transfer.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Path:       target.Path,
			Body:       errorBody(resp.Body),
		}
	}
	return nil
}

// GetObject streams the bytes behind a presigned read URL into w and returns
// the number of bytes written.
func (c *Client) GetObject(ctx context.Context, downloadURL string, w io.Writer, progress ProgressFunc) (int64, error) {
	target, err := parseTransferURL(downloadURL)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{
			StatusCode: resp.StatusCode,
			Path:       target.Path,
			Body:       errorBody(resp.Body),
		}
	}
	n, err := io.Copy(w, newProgressReader(resp.Body, resp.ContentLength, progress))
	if err != nil {
		return n, fmt.Errorf("download: %w", err)
	}
	return n, nil
}

func parseTransferURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("transfer url is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse transfer url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("transfer url %q: unsupported scheme", u.Redacted())
	}
	return u, nil
}

// progressReader reports cumulative bytes read to fn.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	fn     ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.fn(p.loaded, p.total)
	}
	return n, err
}
