package ui

import "strings"

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a file name by removing characters from the
// middle, keeping a short extension intact.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	const ellipsis = "…"
	if limit <= 3 {
		return string(runes[:limit])
	}

	if dot := strings.LastIndex(value, "."); dot > 0 {
		ext := []rune(value[dot:])
		if len(ext) < 10 && len(ext) < limit/2 {
			base := []rune(value[:dot])
			keep := limit - len(ext) - 1
			prefix := keep / 2
			suffix := keep - prefix
			return string(base[:prefix]) + ellipsis + string(base[len(base)-suffix:]) + string(ext)
		}
	}

	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + ellipsis + string(runes[len(runes)-suffix:])
}

// singleLine collapses whitespace so paste previews fit on one row.
func singleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}
