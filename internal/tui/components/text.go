package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mta-tools/mta/internal/tui/theme"
)

// Styler renders short styled fragments. A plain Styler returns text
// without escape codes.
type Styler struct {
	Theme theme.Theme
	Plain bool
}

// NewStyler returns a Styler for the current theme.
func NewStyler(plain bool) Styler {
	return Styler{Theme: theme.Current(), Plain: plain}
}

func (s Styler) render(style lipgloss.Style, text string) string {
	if s.Plain {
		return text
	}
	return style.Render(text)
}

// SectionHeader renders a styled section header
func (s Styler) SectionHeader(title string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Primary).Bold(true), "┌─ "+title+" ─")
}

// SectionDivider renders a subtle divider line
func (s Styler) SectionDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Surface2), strings.Repeat("─", width))
}

// KeyValue renders a key-value pair with consistent styling
func (s Styler) KeyValue(key, value string, keyWidth int) string {
	paddedKey := fmt.Sprintf("%-*s", keyWidth, key+":")
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Subtext), paddedKey) + " " +
		s.render(lipgloss.NewStyle().Foreground(s.Theme.Text), value)
}

// Success renders a success message with icon
func (s Styler) Success(msg string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Success), "✓ "+msg)
}

// Error renders an error message with icon
func (s Styler) Error(msg string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Error), "✗ "+msg)
}

// Warning renders a warning message with icon
func (s Styler) Warning(msg string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Warning), "⚠ "+msg)
}

// Subtle renders muted text
func (s Styler) Subtle(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Subtext), text)
}

// Bold renders bold text
func (s Styler) Bold(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Text).Bold(true), text)
}

// Accent renders highlighted text
func (s Styler) Accent(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(s.Theme.Primary), text)
}

// Swatch renders text on a category color, picking a readable foreground.
func (s Styler) Swatch(text, hex string) string {
	if s.Plain {
		return text
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(theme.Readable(hex)).
		Padding(0, 1).
		Render(text)
}
