package persist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mta-tools/mta/internal/timeline"
)

// PresenceWindow is the fixed window width of the presence table, in seconds.
const PresenceWindow = 10.0

// LayerBlock is a block tagged with the name of its layer.
type LayerBlock struct {
	Layer string
	timeline.Block
}

func sortedBlocks(blocks []timeline.Block) []timeline.Block {
	out := append([]timeline.Block(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// Chronological merges all layers into one start-ordered list. Ties keep
// layer order.
func Chronological(d Document) []LayerBlock {
	var all []LayerBlock
	for _, l := range d.Layers {
		for _, b := range sortedBlocks(l.Blocks) {
			all = append(all, LayerBlock{Layer: l.Name, Block: b})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime < all[j].StartTime })
	return all
}

func span(b timeline.Block) string {
	return timeline.FormatClock(b.StartTime) + " – " + timeline.FormatClock(b.EndTime())
}

// TextSummary renders the chronological text view: a section per non-empty
// layer followed by a merged timeline tagged with layer names.
func TextSummary(d Document) string {
	var sb strings.Builder
	sb.WriteString("=== Music analysis summary ===\n\n")
	fmt.Fprintf(&sb, "Student: %s\n", d.StudentInfo.FullName)
	fmt.Fprintf(&sb, "Video: %s\n", d.VideoInfo.Title)
	fmt.Fprintf(&sb, "URL: %s\n", d.VideoInfo.URL)
	fmt.Fprintf(&sb, "Duration: %s\n", timeline.FormatClock(d.VideoInfo.Duration))
	if !d.ExportDate.IsZero() {
		fmt.Fprintf(&sb, "Date: %s\n", d.ExportDate.Format("2006-01-02"))
	}
	sb.WriteString("\n")

	for _, l := range d.Layers {
		if len(l.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", strings.ToUpper(l.Name))
		for _, b := range sortedBlocks(l.Blocks) {
			fmt.Fprintf(&sb, "  %s: %s\n", span(b), b.DisplayText())
		}
		sb.WriteString("\n")
	}

	all := Chronological(d)
	if len(all) > 0 {
		sb.WriteString("=== Chronological timeline ===\n\n")
		for _, lb := range all {
			fmt.Fprintf(&sb, "%s [%s]: %s\n", span(lb.Block), lb.Layer, lb.DisplayText())
		}
	}
	return sb.String()
}

// CSV renders one row per block, per layer in start order.
func CSV(d Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"StartTime", "EndTime", "Layer", "Label", "Annotation"}); err != nil {
		return nil, err
	}
	for _, l := range d.Layers {
		for _, b := range sortedBlocks(l.Blocks) {
			row := []string{
				timeline.FormatClock(b.StartTime),
				timeline.FormatClock(b.EndTime()),
				l.Name,
				b.Label,
				b.Annotation,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// PresenceRow is one window of the presence table.
type PresenceRow struct {
	From  float64
	To    float64
	Cells []string
}

// Presence is the fixed-interval presence table: rows are windows, columns
// are layers.
type Presence struct {
	Layers []string
	Rows   []PresenceRow
}

func presenceLabel(b timeline.Block) string {
	if b.Annotation == "" {
		return b.Label
	}
	return fmt.Sprintf("%s (%s)", b.Label, b.Annotation)
}

// PresenceTable builds the presence view over consecutive windows of
// PresenceWindow seconds from 0 to the video duration. A block is listed in
// a window when start < windowEnd and start+duration > windowStart.
func PresenceTable(d Document) Presence {
	p := Presence{Layers: make([]string, len(d.Layers))}
	sorted := make([][]timeline.Block, len(d.Layers))
	for i, l := range d.Layers {
		p.Layers[i] = l.Name
		sorted[i] = sortedBlocks(l.Blocks)
	}

	total := d.VideoInfo.Duration
	n := int(math.Ceil(total / PresenceWindow))
	for i := 0; i < n; i++ {
		from := float64(i) * PresenceWindow
		to := math.Min(from+PresenceWindow, total)
		row := PresenceRow{From: from, To: to, Cells: make([]string, len(d.Layers))}
		for li, blocks := range sorted {
			var labels []string
			for _, b := range blocks {
				if b.Overlaps(from, to) {
					labels = append(labels, presenceLabel(b))
				}
			}
			row.Cells[li] = strings.Join(labels, "; ")
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// Records flattens the table into a header row plus one row per window.
func (p Presence) Records() [][]string {
	header := append([]string{"Time"}, p.Layers...)
	out := [][]string{header}
	for _, r := range p.Rows {
		rec := append([]string{timeline.FormatClock(r.From) + "-" + timeline.FormatClock(r.To)}, r.Cells...)
		out = append(out, rec)
	}
	return out
}

// CSV renders the presence table as CSV.
func (p Presence) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(p.Records()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
