// Package components holds small rendering helpers shared by the editor and
// the command line output.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mta-tools/mta/internal/tui/theme"
	"github.com/mta-tools/mta/internal/util"
)

// TableStyle defines the visual style of a table
type TableStyle int

const (
	// TableStyleRounded uses rounded box-drawing corners
	TableStyleRounded TableStyle = iota
	// TableStyleSimple uses simple line separators
	TableStyleSimple
	// TableStyleMinimal uses dots and subtle lines
	TableStyleMinimal
)

// StyledTable renders terminal tables with box-drawing borders.
type StyledTable struct {
	headers  []string
	rows     [][]string
	widths   []int
	style    TableStyle
	title    string
	footer   string
	maxCell  int
	plain    bool
	theme    theme.Theme
	hasTheme bool
}

// NewStyledTable creates a new styled table with headers
func NewStyledTable(headers ...string) *StyledTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &StyledTable{
		headers: headers,
		widths:  widths,
		style:   TableStyleRounded,
	}
}

// WithTitle adds a title to the table
func (t *StyledTable) WithTitle(title string) *StyledTable {
	t.title = title
	return t
}

// WithFooter adds a footer to the table
func (t *StyledTable) WithFooter(footer string) *StyledTable {
	t.footer = footer
	return t
}

// WithStyle sets the table style
func (t *StyledTable) WithStyle(style TableStyle) *StyledTable {
	t.style = style
	return t
}

// WithTheme sets the palette; theme.Current() is used otherwise.
func (t *StyledTable) WithTheme(th theme.Theme) *StyledTable {
	t.theme = th
	t.hasTheme = true
	return t
}

// WithPlain disables colors, for pipes and NO_COLOR.
func (t *StyledTable) WithPlain(plain bool) *StyledTable {
	t.plain = plain
	return t
}

// WithMaxCellWidth truncates cells wider than n cells. Zero means no limit.
func (t *StyledTable) WithMaxCellWidth(n int) *StyledTable {
	t.maxCell = n
	for i := range t.widths {
		if n > 0 && t.widths[i] > n {
			t.widths[i] = n
		}
	}
	return t
}

// AddRow adds a row to the table
func (t *StyledTable) AddRow(cols ...string) {
	for i, c := range cols {
		if i >= len(t.widths) {
			break
		}
		w := runewidth.StringWidth(c)
		if t.maxCell > 0 && w > t.maxCell {
			w = t.maxCell
		}
		if w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cols)
}

// RowCount returns the number of rows
func (t *StyledTable) RowCount() int {
	return len(t.rows)
}

func (t *StyledTable) styler(s lipgloss.Style) func(string) string {
	if t.plain {
		return func(v string) string { return v }
	}
	return func(v string) string { return s.Render(v) }
}

// Render returns the table as a styled string
func (t *StyledTable) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	th := t.theme
	if !t.hasTheme {
		th = theme.Current()
	}
	var sb strings.Builder

	var topLeft, topRight, bottomLeft, bottomRight string
	var horizontal, vertical string
	var leftT, rightT, topT, bottomT, cross string

	switch t.style {
	case TableStyleRounded:
		topLeft, topRight = "╭", "╮"
		bottomLeft, bottomRight = "╰", "╯"
		horizontal, vertical = "─", "│"
		leftT, rightT = "├", "┤"
		topT, bottomT = "┬", "┴"
		cross = "┼"
	case TableStyleSimple:
		topLeft, topRight = "┌", "┐"
		bottomLeft, bottomRight = "└", "┘"
		horizontal, vertical = "─", "│"
		leftT, rightT = "├", "┤"
		topT, bottomT = "┬", "┴"
		cross = "┼"
	case TableStyleMinimal:
		topLeft, topRight = " ", " "
		bottomLeft, bottomRight = " ", " "
		horizontal, vertical = "─", " "
		leftT, rightT = " ", " "
		topT, bottomT = "─", "─"
		cross = "─"
	}

	border := t.styler(lipgloss.NewStyle().Foreground(th.Surface2))
	header := t.styler(lipgloss.NewStyle().Foreground(th.Primary).Bold(true))
	text := t.styler(lipgloss.NewStyle().Foreground(th.Text))
	subtext := t.styler(lipgloss.NewStyle().Foreground(th.Subtext))

	buildHLine := func(left, mid, right, fill string) string {
		var line strings.Builder
		line.WriteString(border(left))
		for i, w := range t.widths {
			line.WriteString(border(strings.Repeat(fill, w+2)))
			if i < len(t.widths)-1 {
				line.WriteString(border(mid))
			}
		}
		line.WriteString(border(right))
		return line.String()
	}

	if t.title != "" {
		sb.WriteString(header(t.title))
		sb.WriteString("\n")
	}

	sb.WriteString(buildHLine(topLeft, topT, topRight, horizontal))
	sb.WriteString("\n")

	sb.WriteString(border(vertical))
	for i, h := range t.headers {
		sb.WriteString(" ")
		sb.WriteString(header(util.PadCells(h, t.widths[i])))
		sb.WriteString(" ")
		sb.WriteString(border(vertical))
	}
	sb.WriteString("\n")

	sb.WriteString(buildHLine(leftT, cross, rightT, horizontal))
	sb.WriteString("\n")

	for _, row := range t.rows {
		sb.WriteString(border(vertical))
		for i := range t.headers {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(text(util.PadCells(cell, t.widths[i])))
			sb.WriteString(" ")
			sb.WriteString(border(vertical))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(buildHLine(bottomLeft, bottomT, bottomRight, horizontal))
	sb.WriteString("\n")

	if t.footer != "" {
		sb.WriteString(subtext(t.footer))
		sb.WriteString("\n")
	}

	return sb.String()
}

// String implements fmt.Stringer
func (t *StyledTable) String() string {
	return t.Render()
}
