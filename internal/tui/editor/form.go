package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/theme"
)

const (
	fieldStart = iota
	fieldDuration
	fieldAnnotation
	fieldCount
)

var fieldLabels = [fieldCount]string{"Start (m:ss.s)", "Duration (s)", "Annotation"}

// blockForm edits one block's start, duration and annotation. Input is
// applied only on save; malformed times keep the block's current value.
type blockForm struct {
	editor timeline.BlockEditor
	inputs [fieldCount]textinput.Model
	focus  int
	keys   FormKeyMap
}

// formResult is returned by blockForm.update when the form closes.
type formResult struct {
	done    bool
	saved   bool
	block   timeline.Block
	err     error
	ignored []string // fields whose input could not be parsed
}

func newBlockForm(store *timeline.BlockStore, id string) (*blockForm, tea.Cmd, error) {
	f := &blockForm{keys: DefaultFormKeyMap()}
	if err := f.editor.Open(store, id); err != nil {
		return nil, nil, err
	}
	d := f.editor.Draft()
	values := [fieldCount]string{
		timeline.FormatPrecise(d.StartTime),
		trimFloat(d.Duration),
		d.Annotation,
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(values[i])
		if i == fieldAnnotation {
			in.CharLimit = 500
			in.Width = 40
		} else {
			in.CharLimit = 12
			in.Width = 12
		}
		f.inputs[i] = in
	}
	return f, f.inputs[fieldStart].Focus(), nil
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func (f *blockForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *blockForm) update(msg tea.Msg) (formResult, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.Cancel):
			f.editor.Cancel()
			return formResult{done: true}, nil
		case key.Matches(km, f.keys.Save):
			return f.save(), nil
		case key.Matches(km, f.keys.Next):
			return formResult{}, f.setFocus(f.focus + 1)
		case key.Matches(km, f.keys.Prev):
			return formResult{}, f.setFocus(f.focus - 1)
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formResult{}, cmd
}

func (f *blockForm) save() formResult {
	var ignored []string
	if !f.editor.SetStart(f.inputs[fieldStart].Value()) {
		ignored = append(ignored, "start")
	}
	if !f.editor.SetDuration(f.inputs[fieldDuration].Value()) {
		ignored = append(ignored, "duration")
	}
	f.editor.SetAnnotation(f.inputs[fieldAnnotation].Value())
	b, err := f.editor.Save()
	return formResult{done: true, saved: err == nil, block: b, err: err, ignored: ignored}
}

func (f *blockForm) view(t theme.Theme, width int) string {
	b := f.editor.Block()
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Mauve).
		Render(fmt.Sprintf("Edit %s", b.Label))
	labelStyle := lipgloss.NewStyle().Foreground(t.Subtext).Width(16)
	focused := lipgloss.NewStyle().Foreground(t.Blue).Bold(true).Width(16)

	lines := []string{title}
	for i, in := range f.inputs {
		ls := labelStyle
		if i == f.focus {
			ls = focused
		}
		lines = append(lines, ls.Render(fieldLabels[i])+" "+in.View())
	}
	hint := lipgloss.NewStyle().Foreground(t.Overlay).
		Render("tab next field · enter save · esc cancel")
	lines = append(lines, hint)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Surface1).
		Padding(0, 1)
	if width > 4 {
		box = box.MaxWidth(width)
	}
	return box.Render(strings.Join(lines, "\n"))
}
