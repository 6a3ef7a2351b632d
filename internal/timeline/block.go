package timeline

import (
	"fmt"
	"math"
)

// Time bounds, in seconds.
const (
	// MinDuration is the shortest duration a block may have.
	MinDuration = 0.1
	// MaxTime bounds every start, duration and timeline length.
	MaxTime = 24 * 60 * 60
)

// ValidTime reports whether t is a finite time no larger than MaxTime.
func ValidTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t <= MaxTime
}

// Block is one annotated interval inside a layer.
type Block struct {
	// ID is opaque and stable for the lifetime of the block.
	ID string `json:"id" yaml:"id"`

	// Category selects the catalog entry (meaning and color).
	Category string `json:"category" yaml:"category"`

	// Label is the catalog display name.
	Label string `json:"label" yaml:"label"`

	// StartTime is the offset in seconds, always in [0, MaxTime].
	StartTime float64 `json:"startTime" yaml:"startTime"`

	// Duration in seconds, always in [MinDuration, MaxTime].
	Duration float64 `json:"duration" yaml:"duration"`

	// Annotation is an optional free-text note.
	Annotation string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

// EndTime returns StartTime + Duration.
func (b Block) EndTime() float64 {
	return b.StartTime + b.Duration
}

// DisplayText is the label followed by the annotation, if any.
func (b Block) DisplayText() string {
	if b.Annotation == "" {
		return b.Label
	}
	return fmt.Sprintf("%s - %s", b.Label, b.Annotation)
}

// Overlaps reports whether the block intersects the half-open window [from, to).
func (b Block) Overlaps(from, to float64) bool {
	return b.StartTime < to && b.EndTime() > from
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	StartTime  *float64
	Duration   *float64
	Annotation *string
}

// WithStart returns a Patch that sets StartTime.
func WithStart(t float64) Patch {
	return Patch{StartTime: &t}
}

// WithDuration returns a Patch that sets Duration.
func WithDuration(d float64) Patch {
	return Patch{Duration: &d}
}

// WithAnnotation returns a Patch that sets Annotation.
func WithAnnotation(s string) Patch {
	return Patch{Annotation: &s}
}

func (p Patch) apply(b Block) Block {
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		b.Duration = *p.Duration
	}
	if p.Annotation != nil {
		b.Annotation = *p.Annotation
	}
	return normalize(b)
}

func clampStart(t float64) float64 {
	switch {
	case math.IsNaN(t) || t < 0:
		return 0
	case t > MaxTime:
		return MaxTime
	}
	return t
}

func clampDuration(d float64) float64 {
	switch {
	case math.IsNaN(d) || d < MinDuration:
		return MinDuration
	case d > MaxTime:
		return MaxTime
	}
	return d
}

func normalize(b Block) Block {
	b.StartTime = clampStart(b.StartTime)
	b.Duration = clampDuration(b.Duration)
	return b
}
