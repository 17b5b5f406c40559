package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the room URL is hidden
	// from the header.
	LayoutCompactWidth = 80

	// LayoutProgressWidth is the widest a progress bar is drawn.
	LayoutProgressWidth = 48
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval. It is shorter
	// than the poll period so transfer progress moves smoothly.
	DefaultUIInterval = 200 * time.Millisecond
)

// clampPage keeps page inside [1, last page] for total entries at size per
// page.
func clampPage(page, total, size int) int {
	if size <= 0 {
		size = 1
	}
	last := (total + size - 1) / size
	if last < 1 {
		last = 1
	}
	switch {
	case page < 1:
		return 1
	case page > last:
		return last
	default:
		return page
	}
}

// pageCount returns the number of pages for total entries.
func pageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
