package timeline

import (
	"math"
	"strings"
	"sync"
	"testing"
)

func TestBlockStoreAddClamps(t *testing.T) {
	s := NewBlockStore("estructura")

	tests := []struct {
		name      string
		start     float64
		dur       float64
		wantStart float64
		wantDur   float64
	}{
		{"valid", 3, 8, 3, 8},
		{"negative start", -5, 8, 0, 8},
		{"zero duration", 1, 0, 1, MinDuration},
		{"negative duration", 1, -3, 1, MinDuration},
		{"tiny duration", 1, 0.05, 1, MinDuration},
		{"NaN start", math.NaN(), 2, 0, 2},
		{"NaN duration", 2, math.NaN(), 2, MinDuration},
		{"infinite start", math.Inf(1), 2, MaxTime, 2},
		{"negative infinite start", math.Inf(-1), 2, 0, 2},
		{"infinite duration", 2, math.Inf(1), 2, MaxTime},
		{"huge duration", 2, 1e300, 2, MaxTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Add("intro", "Intro", tt.start, tt.dur)
			if b.StartTime != tt.wantStart {
				t.Errorf("StartTime = %v, want %v", b.StartTime, tt.wantStart)
			}
			if b.Duration != tt.wantDur {
				t.Errorf("Duration = %v, want %v", b.Duration, tt.wantDur)
			}
			stored, ok := s.Get(b.ID)
			if !ok {
				t.Fatalf("block %s not stored", b.ID)
			}
			if stored != b {
				t.Errorf("stored = %+v, want %+v", stored, b)
			}
		})
	}
}

func TestBlockStoreIDs(t *testing.T) {
	s := NewBlockStore("conectores")
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		b := s.Add("fill", "Fill", 0, 2)
		if !strings.HasPrefix(b.ID, "conectores-") {
			t.Errorf("id %q lacks layer prefix", b.ID)
		}
		if seen[b.ID] {
			t.Fatalf("duplicate id %q", b.ID)
		}
		seen[b.ID] = true
	}
	if s.Len() != 50 {
		t.Errorf("Len = %d, want 50", s.Len())
	}
}

func TestBlockStoreLabelFallback(t *testing.T) {
	s := NewBlockStore("otros")
	b := s.Add("custom", "", 0, 1)
	if b.Label != "custom" {
		t.Errorf("Label = %q, want category fallback", b.Label)
	}
}

func TestBlockStoreRemove(t *testing.T) {
	var notified int
	s := newBlockStore("otros", &sync.RWMutex{}, func(string) { notified++ })
	b := s.Add("hit", "Hit", 1, 0.5)
	notified = 0

	if !s.Remove(b.ID) {
		t.Error("Remove of existing block returned false")
	}
	if s.Remove(b.ID) {
		t.Error("Remove of missing block returned true")
	}
	if s.Remove("nope") {
		t.Error("Remove of unknown id returned true")
	}
	if notified != 1 {
		t.Errorf("notified %d times, want 1", notified)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestBlockStoreUpdate(t *testing.T) {
	s := NewBlockStore("estructura")
	b := s.Add("verse", "A (Estrofa)", 10, 16)

	got, ok := s.Update(b.ID, WithAnnotation("primera estrofa"))
	if !ok {
		t.Fatal("Update returned false")
	}
	if got.Annotation != "primera estrofa" || got.StartTime != 10 || got.Duration != 16 {
		t.Errorf("merge failed: %+v", got)
	}

	got, _ = s.Update(b.ID, Patch{StartTime: ptr(-4.0), Duration: ptr(0.0)})
	if got.StartTime != 0 {
		t.Errorf("StartTime = %v, want 0", got.StartTime)
	}
	if got.Duration != MinDuration {
		t.Errorf("Duration = %v, want %v", got.Duration, MinDuration)
	}
	if got.Annotation != "primera estrofa" {
		t.Errorf("Annotation lost on partial update: %q", got.Annotation)
	}

	if _, ok := s.Update("missing", WithStart(3)); ok {
		t.Error("Update of unknown id returned true")
	}
	if s.Len() != 1 {
		t.Errorf("Update of unknown id changed Len to %d", s.Len())
	}
}

func TestBlockStoreSortedStable(t *testing.T) {
	s := NewBlockStore("estructura")
	c := s.Add("chorus", "B", 20, 16)
	a1 := s.Add("intro", "Intro", 0, 8)
	v := s.Add("verse", "A", 8, 16)
	a2 := s.Add("hit", "Hit", 0, 0.5)

	got := s.Sorted()
	want := []string{a1.ID, a2.ID, v.ID, c.ID}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Sorted()[%d] = %s, want %s", i, got[i].Label, want[i])
		}
	}

	if len(s.List()) != 4 {
		t.Errorf("List len = %d, want 4", len(s.List()))
	}
}

func TestBlockDisplayText(t *testing.T) {
	b := Block{Label: "Intro"}
	if b.DisplayText() != "Intro" {
		t.Errorf("DisplayText = %q", b.DisplayText())
	}
	b.Annotation = "piano solo"
	if b.DisplayText() != "Intro - piano solo" {
		t.Errorf("DisplayText = %q", b.DisplayText())
	}
}

func TestBlockOverlaps(t *testing.T) {
	b := Block{StartTime: 5, Duration: 8}
	tests := []struct {
		from, to float64
		want     bool
	}{
		{0, 10, true},
		{10, 20, true},
		{20, 30, false},
		{13, 20, false},
		{0, 5, false},
	}
	for _, tt := range tests {
		if got := b.Overlaps(tt.from, tt.to); got != tt.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }
