package bridge

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any 404 response from the backend or object storage.
var ErrNotFound = errors.New("not found")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Path       string
	RequestID  string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is, or wraps, a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
