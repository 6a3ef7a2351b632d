package viewer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/components"
	"github.com/mta-tools/mta/internal/tui/theme"
)

func sampleDocument() persist.Document {
	return persist.Document{
		StudentInfo: persist.StudentInfo{Name: "Ana", Surname: "García", FullName: "Ana García"},
		VideoInfo:   persist.VideoInfo{Title: "Bolero", URL: "https://youtu.be/abc", Duration: 120},
		ExportDate:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Layers: []persist.LayerDoc{
			{ID: "estructura", Name: "Estructura Formal", Blocks: []timeline.Block{
				{ID: "estructura-2", Category: "verse", Label: "A (Estrofa)", StartTime: 30, Duration: 16},
				{ID: "estructura-1", Category: "intro", Label: "Intro", StartTime: 0, Duration: 8,
					Annotation: "solo de caja con un patrón rítmico que se repite durante toda la obra"},
			}},
			{ID: "melodia-principal", Name: "Melodía Principal", Blocks: []timeline.Block{
				{ID: "melodia-principal-1", Category: "tema-a", Label: "TEMA A", StartTime: 4, Duration: 20},
			}},
			{ID: "otros", Name: "Otros", Blocks: []timeline.Block{}},
		},
	}
}

func plainStyler() components.Styler {
	return components.Styler{Theme: theme.Mocha, Plain: true}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleDocument(), Options{Styler: plainStyler()}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain output has escape codes:\n%s", out)
	}
	for _, want := range []string{
		"Student:  Ana García",
		"Duration: 2:00",
		"┌─ Estructura Formal (2) ─",
		"   1. 0:00 – 0:08  Intro",
		"   2. 0:30 – 0:46  A (Estrofa)",
		"┌─ Timeline ─",
		"3 blocks",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Otros (") {
		t.Error("empty layer should be skipped")
	}
	_, timelinePart, _ := strings.Cut(out, "┌─ Timeline ─")
	if strings.Index(timelinePart, "Intro - solo") > strings.Index(timelinePart, "TEMA A") {
		t.Error("timeline should list blocks by start time")
	}
}

func TestRenderWrapsAnnotations(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleDocument(), Options{Styler: plainStyler(), Width: 40}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var annotation []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "      ") && !strings.HasPrefix(strings.TrimSpace(line), "│") {
			annotation = append(annotation, line)
		}
	}
	if len(annotation) < 2 {
		t.Fatalf("annotation not wrapped: %q", annotation)
	}
	for _, line := range annotation {
		if len([]rune(line)) > 40 {
			t.Errorf("line %q exceeds width", line)
		}
	}
}

func TestRenderRange(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Styler: plainStyler(), From: 25, To: 60}
	if err := Render(&buf, sampleDocument(), opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Range:    0:25 – 1:00") {
		t.Errorf("range line missing:\n%s", out)
	}
	if strings.Contains(out, "Intro") || strings.Contains(out, "TEMA A") {
		t.Errorf("blocks outside the range were printed:\n%s", out)
	}
	if !strings.Contains(out, "A (Estrofa)") {
		t.Errorf("overlapping block missing:\n%s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Styler: plainStyler(), From: 200}
	if err := Render(&buf, sampleDocument(), opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "⚠ no blocks") {
		t.Errorf("expected empty notice:\n%s", buf.String())
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		want     int
	}{
		{"all", 0, 120, 3},
		{"touching end excluded", 8, 30, 1},
		{"inside one block", 35, 40, 1},
		{"after everything", 100, 120, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := 0
			for _, l := range Filter(sampleDocument(), tt.from, tt.to).Layers {
				got += len(l.Blocks)
			}
			if got != tt.want {
				t.Errorf("Filter(%v, %v) kept %d blocks, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
