// Package clipboard wraps the system clipboard behind a small interface so
// the room engine can be tested with a fake.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// ErrUnavailable is returned when no clipboard provider is installed.
var ErrUnavailable = errors.New("clipboard unavailable")

// System uses the platform clipboard (pbcopy, xclip, xsel, wl-clipboard,
// Windows API). Writes fall back to an OSC 52 escape sequence on the
// controlling terminal when no provider is installed, which also reaches the
// local clipboard over SSH. Reads have no such fallback.
type System struct {
	// TTY receives OSC 52 sequences. Nil opens /dev/tty per write.
	TTY io.Writer
	// Env looks up environment variables. Nil uses os.Getenv.
	Env func(string) string
}

var _ Clipboard = (*System)(nil)

// ReadText returns the clipboard contents.
func (s *System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents.
func (s *System) WriteText(text string) error {
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return s.writeOSC52(text)
}

func (s *System) writeOSC52(text string) error {
	w := s.TTY
	if w == nil {
		tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer func() { _ = tty.Close() }()
		w = tty
	}

	seq := osc52.New(text)
	getenv := s.Env
	if getenv == nil {
		getenv = os.Getenv
	}
	term := getenv("TERM")
	switch {
	case getenv("TMUX") != "" || strings.HasPrefix(term, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(w); err != nil {
		return fmt.Errorf("write osc52: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard. The zero value is empty and usable.
type Memory struct {
	mu       sync.Mutex
	text     string
	ReadErr  error
	WriteErr error
	Writes   int
}

var _ Clipboard = (*Memory)(nil)

// ReadText returns the stored text or ReadErr.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

// WriteText stores text or returns WriteErr.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	m.Writes++
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
