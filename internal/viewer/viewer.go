// Package viewer renders a read-only report of an exported analysis.
package viewer

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mta-tools/mta/internal/catalog"
	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/components"
)

// Options controls what Render prints and how.
type Options struct {
	// From and To restrict output to blocks overlapping [From, To).
	// To <= 0 means the end of the timeline.
	From, To float64
	// Width wraps annotations; 0 disables wrapping.
	Width   int
	Styler  components.Styler
	Catalog *catalog.Catalog
}

func (o Options) filtered() bool {
	return o.From > 0 || o.To > 0
}

func (o Options) window(d persist.Document) (float64, float64) {
	to := o.To
	if to <= 0 {
		to = d.VideoInfo.Duration
		for _, l := range d.Layers {
			for _, b := range l.Blocks {
				if b.EndTime() > to {
					to = b.EndTime()
				}
			}
		}
	}
	return o.From, to
}

// Filter returns a copy of d keeping only blocks that overlap the window.
func Filter(d persist.Document, from, to float64) persist.Document {
	out := d
	out.Layers = make([]persist.LayerDoc, len(d.Layers))
	for i, l := range d.Layers {
		kept := []timeline.Block{}
		for _, b := range l.Blocks {
			if b.Overlaps(from, to) {
				kept = append(kept, b)
			}
		}
		out.Layers[i] = persist.LayerDoc{ID: l.ID, Name: l.Name, Blocks: kept}
	}
	return out
}

func span(b timeline.Block) string {
	return timeline.FormatClock(b.StartTime) + " – " + timeline.FormatClock(b.EndTime())
}

// Render writes the report for d to w.
func Render(w io.Writer, d persist.Document, opts Options) error {
	s := opts.Styler
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.filtered() {
		from, to := opts.window(d)
		d = Filter(d, from, to)
	}

	var b strings.Builder
	b.WriteString(s.SectionHeader("Music analysis") + "\n")
	b.WriteString("  " + s.KeyValue("Student", d.StudentInfo.FullName, 9) + "\n")
	if d.VideoInfo.Title != "" {
		b.WriteString("  " + s.KeyValue("Video", d.VideoInfo.Title, 9) + "\n")
	}
	if d.VideoInfo.URL != "" {
		b.WriteString("  " + s.KeyValue("URL", d.VideoInfo.URL, 9) + "\n")
	}
	b.WriteString("  " + s.KeyValue("Duration", timeline.FormatClock(d.VideoInfo.Duration), 9) + "\n")
	if !d.ExportDate.IsZero() {
		b.WriteString("  " + s.KeyValue("Exported", d.ExportDate.Local().Format("2006-01-02 15:04"), 9) + "\n")
	}
	if opts.filtered() {
		from, to := opts.window(d)
		b.WriteString("  " + s.KeyValue("Range", timeline.FormatClock(from)+" – "+timeline.FormatClock(to), 9) + "\n")
	}

	total := 0
	for _, l := range d.Layers {
		if len(l.Blocks) == 0 {
			continue
		}
		total += len(l.Blocks)
		b.WriteString("\n" + s.SectionHeader(fmt.Sprintf("%s (%d)", l.Name, len(l.Blocks))) + "\n")
		for i, blk := range persist.Chronological(persist.Document{Layers: []persist.LayerDoc{l}}) {
			label := s.Swatch(blk.Label, cat.Resolve(blk.Category).Color)
			fmt.Fprintf(&b, "  %2d. %s  %s\n", i+1, s.Subtle(span(blk.Block)), label)
			if blk.Annotation != "" {
				b.WriteString(wrapAnnotation(blk.Annotation, opts.Width, 6) + "\n")
			}
		}
	}

	if total == 0 {
		b.WriteString("\n" + s.Warning("no blocks") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n" + s.SectionHeader("Timeline") + "\n")
	tbl := components.NewStyledTable("Start", "End", "Layer", "Block").
		WithTheme(s.Theme).
		WithPlain(s.Plain).
		WithStyle(components.TableStyleSimple).
		WithFooter(fmt.Sprintf("%d blocks", total))
	if opts.Width > 0 {
		tbl.WithMaxCellWidth(max(opts.Width/3, 12))
	}
	for _, lb := range persist.Chronological(d) {
		tbl.AddRow(timeline.FormatClock(lb.StartTime), timeline.FormatClock(lb.EndTime()), lb.Layer, lb.DisplayText())
	}
	b.WriteString(tbl.Render())

	_, err := io.WriteString(w, b.String())
	return err
}

func wrapAnnotation(text string, width, pad int) string {
	if width > pad+10 {
		text = wordwrap.String(text, width-pad)
	}
	return indent.String(text, uint(pad))
}
