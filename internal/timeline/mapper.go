// Package timeline implements the annotation engine: fixed layers of
// labeled time intervals, the time/pixel mapping, the viewport grid and
// the pointer gestures that move and resize blocks.
package timeline

import "math"

// DefaultPixelsPerSecond is the pixel width of one second at zoom 1.
const DefaultPixelsPerSecond = 4.0

// Mapper converts between seconds and pixels for a given zoom.
// ToPixels and ToTime are exact inverses; callers apply any snapping.
type Mapper struct {
	// K is the pixel-per-second scale at zoom 1.
	K float64
}

// DefaultMapper returns a Mapper using DefaultPixelsPerSecond.
func DefaultMapper() Mapper {
	return Mapper{K: DefaultPixelsPerSecond}
}

func (m Mapper) scale() float64 {
	if m.K <= 0 {
		return DefaultPixelsPerSecond
	}
	return m.K
}

// ToPixels returns t * zoom * K. Zoom must be positive.
func (m Mapper) ToPixels(t, zoom float64) float64 {
	return t * zoom * m.scale()
}

// ToTime returns px / (zoom * K). Zoom must be positive.
func (m Mapper) ToTime(px, zoom float64) float64 {
	return px / (zoom * m.scale())
}

// DropTime converts the pixel where a block was dropped into a start time
// snapped to the nearest whole second.
func (m Mapper) DropTime(px, zoom float64) float64 {
	t := math.Round(m.ToTime(px, zoom))
	if t <= 0 {
		return 0
	}
	return t
}
