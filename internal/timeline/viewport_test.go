package timeline

import (
	"math"
	"testing"
)

func TestViewportZoomBounds(t *testing.T) {
	v := NewViewport(DefaultMapper())
	if v.Zoom() != DefaultZoom {
		t.Fatalf("zoom = %v", v.Zoom())
	}

	for i := 0; i < 40; i++ {
		v.ZoomIn()
	}
	if v.Zoom() != MaxZoom {
		t.Errorf("zoom after many ZoomIn = %v, want %v", v.Zoom(), MaxZoom)
	}
	for i := 0; i < 40; i++ {
		v.ZoomOut()
	}
	if v.Zoom() != MinZoom {
		t.Errorf("zoom after many ZoomOut = %v, want %v", v.Zoom(), MinZoom)
	}

	v.SetZoom(1)
	if got := v.ZoomIn(); got != 1.5 {
		t.Errorf("ZoomIn from 1 = %v, want 1.5", got)
	}
	if got := v.SetZoom(-3); got != MinZoom {
		t.Errorf("SetZoom(-3) = %v", got)
	}
}

func TestMarkInterval(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{0.5, 10},
		{1, 10},
		{3.5, 10},
		{4, 5},
		{7.5, 5},
		{8, 1},
		{10, 1},
	}
	for _, tt := range tests {
		if got := MarkInterval(tt.zoom); got != tt.want {
			t.Errorf("MarkInterval(%v) = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestViewportGrid(t *testing.T) {
	v := NewViewport(DefaultMapper())
	v.SetTotalDuration(95)

	g := v.Grid()
	if g.Interval != 10 {
		t.Errorf("interval = %v", g.Interval)
	}
	if len(g.Marks) != 11 || g.Marks[0] != 0 || g.Marks[10] != 100 {
		t.Errorf("marks = %v", g.Marks)
	}
	if g.Width != 380 {
		t.Errorf("width = %v, want 380", g.Width)
	}

	v.SetZoom(8)
	g = v.Grid()
	if g.Interval != 1 || len(g.Marks) != 96 {
		t.Errorf("at zoom 8: interval %v, %d marks", g.Interval, len(g.Marks))
	}
	if v.Width() != 95*8*4 {
		t.Errorf("width = %v", v.Width())
	}

	v.SetTotalDuration(0)
	if v.TotalDuration() != 95 {
		t.Errorf("non-positive duration accepted: %v", v.TotalDuration())
	}
}

func TestViewportRejectsUnusableDurations(t *testing.T) {
	v := NewViewport(DefaultMapper())
	v.SetTotalDuration(95)

	v.SetTotalDuration(math.Inf(1))
	v.SetTotalDuration(math.NaN())
	if v.TotalDuration() != 95 {
		t.Errorf("non-finite duration accepted: %v", v.TotalDuration())
	}

	v.SetTotalDuration(1e300)
	if v.TotalDuration() != MaxTime {
		t.Errorf("total = %v, want capped at %v", v.TotalDuration(), MaxTime)
	}
	v.SetZoom(MaxZoom)
	if n := len(v.Grid().Marks); n != MaxTime+1 {
		t.Errorf("marks = %d, want %d", n, MaxTime+1)
	}
}

func TestViewportPlayhead(t *testing.T) {
	v := NewViewport(DefaultMapper())
	v.SetZoom(2)
	if got := v.PlayheadX(12.5); got != 100 {
		t.Errorf("PlayheadX = %v, want 100", got)
	}
	if got := v.ToTime(100); got != 12.5 {
		t.Errorf("ToTime = %v, want 12.5", got)
	}
}
