package timeline

import (
	"errors"
	"testing"
)

func TestBlockEditorSave(t *testing.T) {
	s := NewBlockStore("estructura")
	b := s.Add("verse", "A (Estrofa)", 8, 16)

	var e BlockEditor
	if err := e.Open(s, b.ID); err != nil {
		t.Fatal(err)
	}
	if !e.SetStart("1:05.5") {
		t.Error("valid start rejected")
	}
	if !e.SetDuration("12.5") {
		t.Error("valid duration rejected")
	}
	e.SetAnnotation("con cuerdas")

	// Nothing reaches the store before Save.
	if got, _ := s.Get(b.ID); got != b {
		t.Errorf("store changed before save: %+v", got)
	}

	got, err := e.Save()
	if err != nil {
		t.Fatal(err)
	}
	if got.StartTime != 65.5 || got.Duration != 12.5 || got.Annotation != "con cuerdas" {
		t.Errorf("saved = %+v", got)
	}
	if e.IsOpen() {
		t.Error("editor still open after save")
	}
}

func TestBlockEditorIgnoresMalformed(t *testing.T) {
	s := NewBlockStore("estructura")
	b := s.Add("intro", "Intro", 4, 8)

	var e BlockEditor
	e.Open(s, b.ID)
	e.SetStart("0:30")
	for _, bad := range []string{"", "abc", "1:xx", "-1:00", "-3", "x:10"} {
		if e.SetStart(bad) {
			t.Errorf("SetStart(%q) accepted", bad)
		}
	}
	for _, bad := range []string{"", "nope", "-2", "NaN"} {
		if e.SetDuration(bad) {
			t.Errorf("SetDuration(%q) accepted", bad)
		}
	}
	d := e.Draft()
	if d.StartTime != 30 || d.Duration != 8 {
		t.Errorf("draft = %+v, want last valid values", d)
	}

	e.SetDuration("0")
	if e.Draft().Duration != MinDuration {
		t.Errorf("zero duration not clamped: %v", e.Draft().Duration)
	}
}

func TestBlockEditorCancel(t *testing.T) {
	s := NewBlockStore("estructura")
	b := s.Add("intro", "Intro", 4, 8)

	var e BlockEditor
	e.Open(s, b.ID)
	e.SetStart("2:00")
	e.SetAnnotation("discard me")
	e.Cancel()

	if got, _ := s.Get(b.ID); got != b {
		t.Errorf("cancel modified block: %+v", got)
	}
	if _, err := e.Save(); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("Save after Cancel: %v", err)
	}
}

func TestBlockEditorRemovedBlock(t *testing.T) {
	s := NewBlockStore("estructura")
	b := s.Add("intro", "Intro", 4, 8)

	var e BlockEditor
	if err := e.Open(s, "missing"); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("Open missing: %v", err)
	}
	e.Open(s, b.ID)
	s.Remove(b.ID)
	if _, err := e.Save(); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("Save of removed block: %v", err)
	}
	if s.Len() != 0 {
		t.Error("save resurrected a removed block")
	}
}
