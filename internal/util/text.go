package util

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// TruncateCells shortens s to at most width terminal cells, ending with an
// ellipsis when anything was cut.
func TruncateCells(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return runewidth.Truncate(s, 1, "")
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadCells truncates or right-pads s with spaces to exactly width cells.
func PadCells(s string, width int) string {
	s = TruncateCells(s, width)
	if w := runewidth.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// SanitizeFilename turns free text (a student name, a video title) into a
// safe file name stem: letters and digits are kept, runs of anything else
// collapse into a single hyphen.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if runes := []rune(out); len(runes) > 60 {
		out = strings.TrimSuffix(string(runes[:60]), "-")
	}
	return out
}
