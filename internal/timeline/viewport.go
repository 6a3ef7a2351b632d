package timeline

import (
	"math"
	"sync"
)

// Zoom bounds and step for the viewport.
const (
	MinZoom     = 0.5
	MaxZoom     = 10.0
	ZoomStep    = 0.5
	DefaultZoom = 1.0
)

// Grid is the derived render grid of the timeline.
type Grid struct {
	// Interval between time marks, in seconds.
	Interval float64
	// Marks are the mark times from 0 up to the end of the timeline.
	Marks []float64
	// Width is the full timeline width in pixels.
	Width float64
}

// Viewport owns the zoom level and total duration and derives the grid.
type Viewport struct {
	mu     sync.RWMutex
	mapper Mapper
	zoom   float64
	total  float64
	grid   Grid
}

// NewViewport creates a viewport at DefaultZoom and DefaultTotalDuration.
func NewViewport(m Mapper) *Viewport {
	v := &Viewport{mapper: m, zoom: DefaultZoom, total: DefaultTotalDuration}
	v.recompute()
	return v
}

// Mapper returns the time/pixel mapper in use.
func (v *Viewport) Mapper() Mapper {
	return v.mapper
}

// Zoom returns the current zoom.
func (v *Viewport) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// TotalDuration returns the timeline length in seconds.
func (v *Viewport) TotalDuration() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total
}

// ClampZoom bounds z to [MinZoom, MaxZoom]. NaN maps to DefaultZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// SetZoom sets the zoom, clamped, and returns the value applied.
func (v *Viewport) SetZoom(z float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = ClampZoom(z)
	v.recompute()
	return v.zoom
}

// ZoomIn raises zoom by one step.
func (v *Viewport) ZoomIn() float64 {
	return v.SetZoom(v.Zoom() + ZoomStep)
}

// ZoomOut lowers zoom by one step.
func (v *Viewport) ZoomOut() float64 {
	return v.SetZoom(v.Zoom() - ZoomStep)
}

// SetTotalDuration changes the timeline length. Non-positive and infinite
// values are ignored; lengths past MaxTime are capped.
func (v *Viewport) SetTotalDuration(seconds float64) {
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		return
	}
	seconds = math.Min(seconds, MaxTime)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.total = seconds
	v.recompute()
}

// Grid returns the current render grid.
func (v *Viewport) Grid() Grid {
	v.mu.RLock()
	defer v.mu.RUnlock()
	g := v.grid
	g.Marks = append([]float64(nil), v.grid.Marks...)
	return g
}

// Width returns the timeline width in pixels.
func (v *Viewport) Width() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.grid.Width
}

// ToPixels maps a time to pixels at the current zoom.
func (v *Viewport) ToPixels(t float64) float64 {
	return v.mapper.ToPixels(t, v.Zoom())
}

// ToTime maps a pixel offset to seconds at the current zoom.
func (v *Viewport) ToTime(px float64) float64 {
	return v.mapper.ToTime(px, v.Zoom())
}

// PlayheadX returns the pixel offset of the playhead at time t.
func (v *Viewport) PlayheadX(t float64) float64 {
	return v.ToPixels(t)
}

// MarkInterval picks the spacing of time marks for a zoom level.
func MarkInterval(zoom float64) float64 {
	switch {
	case zoom >= 8:
		return 1
	case zoom >= 4:
		return 5
	default:
		return 10
	}
}

func (v *Viewport) recompute() {
	interval := MarkInterval(v.zoom)
	n := int(math.Ceil(v.total / interval))
	marks := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		marks = append(marks, float64(i)*interval)
	}
	v.grid = Grid{
		Interval: interval,
		Marks:    marks,
		Width:    v.mapper.ToPixels(v.total, v.zoom),
	}
}
