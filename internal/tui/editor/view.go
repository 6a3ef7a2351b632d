package editor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/components"
	"github.com/mta-tools/mta/internal/tui/theme"
	"github.com/mta-tools/mta/internal/util"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n")
	b.WriteString(m.renderPalette() + "\n")
	b.WriteString(m.renderRuler() + "\n")

	layers := m.visibleLayers()
	for i, def := range layers {
		b.WriteString(m.renderLayerRow(i, def) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.form != nil:
		b.WriteString(m.form.view(m.theme, m.width) + "\n")
	case m.preview != previewNone:
		b.WriteString(m.renderPreview(m.height-headerRows-len(layers)-4) + "\n")
	default:
		b.WriteString(m.renderDetail() + "\n")
	}

	b.WriteString(m.renderStatus() + "\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	t := m.theme
	student := m.project.Student()
	video := m.project.Video()

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Mauve).Render("♪ mta")
	who := lipgloss.NewStyle().Foreground(t.Text).Render(student.FullName())
	what := lipgloss.NewStyle().Foreground(t.Subtext).Italic(true).Render(video.Title)

	state := "❚❚"
	if m.playing {
		state = "▶"
	}
	if m.muted {
		state += " 🔇"
	}
	clock := lipgloss.NewStyle().Foreground(t.Blue).Bold(true).Render(
		fmt.Sprintf("%s %s / %s", state,
			timeline.FormatClock(m.playhead),
			timeline.FormatClock(m.viewport.TotalDuration())))

	zoom := lipgloss.NewStyle().Foreground(t.Subtext).
		Render(fmt.Sprintf("zoom %.1f×", m.viewport.Zoom()))
	step := lipgloss.NewStyle().Foreground(t.Subtext).
		Render(fmt.Sprintf("step %d/%d", m.step, timeline.MaxStep))

	parts := []string{title, who}
	if video.Title != "" {
		parts = append(parts, what)
	}
	parts = append(parts, clock, zoom, step, m.renderSaveBadge())
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderSaveBadge() string {
	t := m.theme
	switch {
	case m.project.Dirty():
		return lipgloss.NewStyle().Foreground(t.Yellow).Render("● unsaved")
	case !m.project.LastSaved().IsZero():
		return lipgloss.NewStyle().Foreground(t.Green).
			Render("✓ saved " + m.project.LastSaved().Local().Format("15:04:05"))
	default:
		return ""
	}
}

func (m Model) renderPalette() string {
	t := m.theme
	cats := m.categories()
	if len(cats) == 0 {
		return lipgloss.NewStyle().Foreground(t.Overlay).Render("no categories for this step")
	}

	from := m.page * paletteSize
	to := from + paletteSize
	if to > len(cats) {
		to = len(cats)
	}

	var chips []string
	for i := from; i < to; i++ {
		cat := cats[i]
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(cat.Color)).
			Foreground(theme.Readable(cat.Color)).
			Padding(0, 1)
		label := fmt.Sprintf("%d %s", i-from+1, cat.Label)
		if i == m.catIdx {
			style = style.Bold(true).Underline(true)
			label = "▸" + label
		}
		chips = append(chips, style.Render(label))
	}
	line := strings.Join(chips, " ")
	if m.pageCount() > 1 {
		line += lipgloss.NewStyle().Foreground(t.Overlay).
			Render(fmt.Sprintf("  [%d/%d]", m.page+1, m.pageCount()))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) renderRuler() string {
	w := m.trackWidth()
	cells := []rune(strings.Repeat(" ", w))
	for _, mark := range m.viewport.Grid().Marks {
		col := m.columnAt(m.viewport.ToPixels(mark))
		if col < 0 || col >= w {
			continue
		}
		cells[col] = '|'
		label := []rune(timeline.FormatClock(mark))
		if col+1+len(label) > w {
			continue
		}
		free := true
		for i := range label {
			if cells[col+1+i] != ' ' {
				free = false
				break
			}
		}
		if free {
			copy(cells[col+1:], label)
		}
	}
	if head := m.columnAt(m.viewport.PlayheadX(m.playhead)); head >= 0 && head < w {
		cells[head] = '▼'
	}
	gutter := lipgloss.NewStyle().Foreground(m.theme.Overlay).
		Render(util.PadCells("time", gutterWidth))
	return gutter + lipgloss.NewStyle().Foreground(m.theme.Overlay).Render(string(cells))
}

// blockColumns returns the [from, to) track columns covered by b. Every
// block covers at least one column.
func (m Model) blockColumns(b timeline.Block) (int, int) {
	from := m.columnAt(m.viewport.ToPixels(b.StartTime))
	to := int(math.Ceil((m.viewport.ToPixels(b.EndTime()) - m.scrollPx) / m.cellPixels))
	if to <= from {
		to = from + 1
	}
	return from, to
}

func (m Model) renderLayerRow(i int, def timeline.LayerDef) string {
	t := m.theme
	selectedLayer := i == m.layerIdx

	gutterStyle := lipgloss.NewStyle().Foreground(t.Subtext)
	name := " " + def.Name
	if selectedLayer {
		gutterStyle = lipgloss.NewStyle().Foreground(t.Blue).Bold(true)
		name = "▸" + def.Name
	}
	gutter := gutterStyle.Render(util.PadCells(name, gutterWidth-1) + " ")

	layer, ok := m.project.Layer(def.ID)
	if !ok {
		return gutter
	}
	return gutter + m.renderTrack(layer.Blocks.Sorted(), selectedLayer)
}

func (m Model) renderTrack(blocks []timeline.Block, selectedLayer bool) string {
	t := m.theme
	w := m.trackWidth()

	owner := make([]int, w)
	for c := range owner {
		owner[c] = -1
	}
	spans := make([][2]int, len(blocks))
	for i, b := range blocks {
		from, to := m.blockColumns(b)
		spans[i] = [2]int{from, to}
		for c := max(from, 0); c < min(to, w); c++ {
			owner[c] = i
		}
	}
	head := m.columnAt(m.viewport.PlayheadX(m.playhead))

	emptyBg := t.Surface0
	if selectedLayer {
		emptyBg = t.Surface1
	}
	empty := lipgloss.NewStyle().Background(emptyBg)
	playhead := lipgloss.NewStyle().Foreground(t.Playhead).Background(emptyBg).Bold(true)

	var sb strings.Builder
	for c := 0; c < w; {
		if c == head {
			sb.WriteString(playhead.Render("│"))
			c++
			continue
		}
		o := owner[c]
		end := c + 1
		for end < w && owner[end] == o && end != head {
			end++
		}
		if o < 0 {
			sb.WriteString(empty.Render(strings.Repeat(" ", end-c)))
		} else {
			b := blocks[o]
			sb.WriteString(m.blockStyle(b).Render(blockText(b, spans[o], c, end)))
		}
		c = end
	}
	return sb.String()
}

func (m Model) blockStyle(b timeline.Block) lipgloss.Style {
	color := m.catalog.Resolve(b.Category).Color
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(theme.Readable(color))
	if b.ID == m.selected {
		s = s.Bold(true).Underline(true)
	}
	return s
}

// blockText returns the slice [from, to) of the block's label laid over
// its full span.
func blockText(b timeline.Block, span [2]int, from, to int) string {
	full := []rune(util.PadCells(" "+b.DisplayText(), span[1]-span[0]))
	var out []rune
	for c := from; c < to; c++ {
		i := c - span[0]
		if i >= 0 && i < len(full) {
			out = append(out, full[i])
		} else {
			out = append(out, ' ')
		}
	}
	return string(out)
}

func (m Model) renderDetail() string {
	t := m.theme
	layer, b, ok := m.project.FindBlock(m.selected)
	if !ok {
		return lipgloss.NewStyle().Foreground(t.Overlay).Italic(true).
			Render("click empty space to seek · right-click or 'a' to add · drag to move · drag the right edge to resize")
	}
	cat := m.catalog.Resolve(b.Category)
	chip := lipgloss.NewStyle().
		Background(lipgloss.Color(cat.Color)).
		Foreground(theme.Readable(cat.Color)).
		Padding(0, 1).
		Render(b.Label)
	info := fmt.Sprintf(" %s · %s – %s (%ss)", layer.Def.Name,
		timeline.FormatPrecise(b.StartTime), timeline.FormatPrecise(b.EndTime()), trimFloat(b.Duration))
	line := chip + lipgloss.NewStyle().Foreground(t.Text).Render(info)
	if b.Annotation != "" {
		line += lipgloss.NewStyle().Foreground(t.Subtext).Italic(true).Render(" · " + b.Annotation)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) renderPreview(height int) string {
	t := m.theme
	if height < 5 {
		height = 5
	}
	doc := m.document()

	var content string
	switch m.preview {
	case previewText:
		content = persist.TextSummary(doc)
	case previewTable:
		content = renderPresence(persist.PresenceTable(doc), t, m.width-2)
	case previewJSON:
		data, err := persist.Encode(doc, persist.FormatJSON)
		if err != nil {
			content = err.Error()
		} else {
			content = string(data)
		}
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	offset := m.previewOffset
	if offset > len(lines)-1 {
		offset = max(len(lines)-1, 0)
	}
	end := min(offset+height-1, len(lines))
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Mauve).
		Render(fmt.Sprintf("Preview: %s  (v next · ↑↓ scroll · esc close)  %d-%d/%d",
			m.preview, offset+1, end, len(lines)))

	body := make([]string, 0, end-offset)
	for _, l := range lines[offset:end] {
		body = append(body, lipgloss.NewStyle().MaxWidth(m.width).Render(l))
	}
	return title + "\n" + strings.Join(body, "\n")
}

// renderPresence draws the presence table, truncating cells so that the
// table fits the given width.
func renderPresence(p persist.Presence, t theme.Theme, width int) string {
	recs := p.Records()
	if len(recs) == 0 {
		return ""
	}
	tbl := components.NewStyledTable(recs[0]...).WithTheme(t).WithStyle(components.TableStyleSimple)
	if cols := len(recs[0]); cols > 0 && width > 0 {
		tbl.WithMaxCellWidth(max(width/cols-3, 6))
	}
	for _, r := range recs[1:] {
		tbl.AddRow(r...)
	}
	return tbl.Render()
}

func (m Model) renderStatus() string {
	if m.status == "" || m.now().Sub(m.statusAt) > statusTTL {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(m.theme.Green)
	if m.statusErr {
		style = lipgloss.NewStyle().Foreground(m.theme.Error)
	}
	return style.Render(m.status)
}

func (m Model) renderHelpBar() string {
	t := m.theme

	keyStyle := lipgloss.NewStyle().
		Background(t.Surface0).
		Foreground(t.Text).
		Bold(true).
		Padding(0, 1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Overlay)

	var parts []string
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}
